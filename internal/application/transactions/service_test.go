package transactions

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"tidechain-backend/internal/domain"
	"tidechain-backend/internal/infrastructure/database"
	"tidechain-backend/internal/infrastructure/metrics"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db       *gorm.DB
	svc      *Service
	metrics  *metrics.Metrics
	projects *database.ProjectRepository
	buyer    *domain.User
	ngo      *domain.User
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db, err := database.Open("sqlite", ":memory:")
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	ngo := &domain.User{Name: "Reef Trust", Email: "ngo@reef.org", PasswordHash: "x", Role: "ngo"}
	buyer := &domain.User{Name: "Acme Shipping", Email: "buyer@acme.com", PasswordHash: "x", Role: "buyer"}
	require.NoError(t, db.Create(ngo).Error)
	require.NoError(t, db.Create(buyer).Error)

	m := metrics.New(prometheus.NewRegistry())
	projects := &database.ProjectRepository{DB: db}
	svc := NewService(&database.TransactionRepository{DB: db}, projects, m)
	return &fixture{db: db, svc: svc, metrics: m, projects: projects, buyer: buyer, ngo: ngo}
}

func (f *fixture) project(t *testing.T, status domain.ProjectStatus, price float64, total *float64) *domain.Project {
	t.Helper()
	p := &domain.Project{NgoID: f.ngo.ID, Name: "Mangrove Belt", LandSize: 40, Location: "Sundarbans", Status: status, PricePerCredit: price, TotalCredits: total}
	require.NoError(t, f.projects.Create(context.Background(), p))
	return p
}

func (f *fixture) count(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&domain.Transaction{}).Count(&n).Error)
	return n
}

func TestPurchase_VerifiedProject(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	p := f.project(t, domain.ProjectVerified, 250, nil)

	r, err := f.svc.Purchase(ctx, f.buyer.ID, PurchaseInput{ProjectID: p.ID, CreditsPurchased: 20})
	require.NoError(t, err)
	assert.Equal(t, 5000.0, r.TotalAmount)
	assert.Equal(t, 250.0, r.PricePerCredit)
	assert.True(t, strings.HasPrefix(r.CertificateID, "CERT-"))
	assert.NotEqual(t, r.TransactionID, strings.TrimPrefix(r.CertificateID, "CERT-"))

	got, err := f.svc.GetByID(ctx, r.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, r.CertificateID, got.CertificateID)
	assert.Equal(t, 5000.0, got.TotalAmount)
	assert.Equal(t, 20.0, got.CreditsPurchased)
	assert.Equal(t, "Mangrove Belt", got.ProjectName)
	assert.Equal(t, "Reef Trust", got.NgoName)
	assert.Equal(t, "Acme Shipping", got.BuyerName)

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Purchases.WithLabelValues("issued")))
	assert.Equal(t, 20.0, testutil.ToFloat64(f.metrics.CreditsPurchased))
}

func TestPurchase_PendingOrRejectedOrMissingProject(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	pending := f.project(t, domain.ProjectPending, 25, nil)
	rejected := f.project(t, domain.ProjectRejected, 25, nil)

	for _, id := range []uint{pending.ID, rejected.ID, 9999} {
		_, err := f.svc.Purchase(ctx, f.buyer.ID, PurchaseInput{ProjectID: id, CreditsPurchased: 1})
		assert.ErrorIs(t, err, domain.ErrNotFoundOrUnverified)
		assert.Equal(t, "Project not found or not verified", err.Error())
	}
	assert.Equal(t, int64(0), f.count(t))
}

func TestPurchase_NonPositiveCredits(t *testing.T) {
	f := setup(t)
	p := f.project(t, domain.ProjectVerified, 25, nil)

	for _, n := range []float64{0, -5} {
		_, err := f.svc.Purchase(context.Background(), f.buyer.ID, PurchaseInput{ProjectID: p.ID, CreditsPurchased: n})
		assert.ErrorIs(t, err, domain.ErrValidation)
	}
	assert.Equal(t, int64(0), f.count(t))
}

func TestPurchase_FallbackPrice(t *testing.T) {
	f := setup(t)
	p := f.project(t, domain.ProjectVerified, 25, nil)
	require.NoError(t, f.db.Model(&domain.Project{}).Where("id = ?", p.ID).UpdateColumn("price_per_credit", 0).Error)

	r, err := f.svc.Purchase(context.Background(), f.buyer.ID, PurchaseInput{ProjectID: p.ID, CreditsPurchased: 3})
	require.NoError(t, err)
	assert.Equal(t, 75.0, r.TotalAmount)
}

func TestPurchase_DecimalTotal(t *testing.T) {
	f := setup(t)
	p := f.project(t, domain.ProjectVerified, 0.1, nil)

	r, err := f.svc.Purchase(context.Background(), f.buyer.ID, PurchaseInput{ProjectID: p.ID, CreditsPurchased: 3})
	require.NoError(t, err)
	assert.Equal(t, 0.3, r.TotalAmount)
}

func TestPurchase_OversellAllowedByDefault(t *testing.T) {
	f := setup(t)
	total := 5.0
	p := f.project(t, domain.ProjectVerified, 25, &total)

	_, err := f.svc.Purchase(context.Background(), f.buyer.ID, PurchaseInput{ProjectID: p.ID, CreditsPurchased: 50})
	require.NoError(t, err)

	got, _ := f.projects.FindByID(context.Background(), p.ID)
	assert.Equal(t, 5.0, *got.TotalCredits)
}

func TestPurchase_EnforcedInventory(t *testing.T) {
	f := setup(t)
	f.svc.EnforceInventory = true
	total := 10.0
	p := f.project(t, domain.ProjectVerified, 25, &total)
	ctx := context.Background()

	_, err := f.svc.Purchase(ctx, f.buyer.ID, PurchaseInput{ProjectID: p.ID, CreditsPurchased: 8})
	require.NoError(t, err)

	_, err = f.svc.Purchase(ctx, f.buyer.ID, PurchaseInput{ProjectID: p.ID, CreditsPurchased: 3})
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, int64(1), f.count(t))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Purchases.WithLabelValues("insufficient")))

	got, _ := f.projects.FindByID(ctx, p.ID)
	assert.Equal(t, 2.0, *got.TotalCredits)
}

type failingRepo struct {
	Repository
	calls int
}

func (r *failingRepo) Create(context.Context, *domain.Transaction) error {
	r.calls++
	return errors.New("disk I/O error")
}

type stubProjects struct{ p *domain.Project }

func (s stubProjects) FindByID(context.Context, uint) (*domain.Project, error) {
	if s.p == nil {
		return nil, domain.ErrNotFound
	}
	return s.p, nil
}

func TestPurchase_PersistenceFailure(t *testing.T) {
	repo := &failingRepo{}
	svc := NewService(repo, stubProjects{p: &domain.Project{ID: 1, Status: domain.ProjectVerified, PricePerCredit: 25}}, nil)

	_, err := svc.Purchase(context.Background(), 2, PurchaseInput{ProjectID: 1, CreditsPurchased: 1})
	assert.ErrorIs(t, err, domain.ErrPersistence)
	assert.Equal(t, "Failed to create transaction", err.Error())
	assert.Equal(t, 1, repo.calls)
}

type recordingNotifier struct{ receipts []Receipt }

func (n *recordingNotifier) PurchaseIssued(_ context.Context, _ uint, r Receipt) {
	n.receipts = append(n.receipts, r)
}

func TestPurchase_NotifiesOnlyOnSuccess(t *testing.T) {
	f := setup(t)
	n := &recordingNotifier{}
	f.svc.Notifier = n
	verified := f.project(t, domain.ProjectVerified, 10, nil)
	pending := f.project(t, domain.ProjectPending, 10, nil)

	_, _ = f.svc.Purchase(context.Background(), f.buyer.ID, PurchaseInput{ProjectID: pending.ID, CreditsPurchased: 1})
	r, err := f.svc.Purchase(context.Background(), f.buyer.ID, PurchaseInput{ProjectID: verified.ID, CreditsPurchased: 4})
	require.NoError(t, err)

	require.Len(t, n.receipts, 1)
	assert.Equal(t, r.TransactionID, n.receipts[0].TransactionID)
	assert.Equal(t, 40.0, n.receipts[0].TotalAmount)
}

func TestListByBuyer_NewestFirst(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	p := f.project(t, domain.ProjectVerified, 25, nil)

	empty, err := f.svc.ListByBuyer(ctx, f.buyer.ID)
	require.NoError(t, err)
	assert.NotNil(t, empty)

	first, err := f.svc.Purchase(ctx, f.buyer.ID, PurchaseInput{ProjectID: p.ID, CreditsPurchased: 1})
	require.NoError(t, err)
	second, err := f.svc.Purchase(ctx, f.buyer.ID, PurchaseInput{ProjectID: p.ID, CreditsPurchased: 2})
	require.NoError(t, err)
	require.NoError(t, f.db.Model(&domain.Transaction{}).Where("id = ?", first.TransactionID).
		UpdateColumn("created_at", time.Now().Add(-time.Hour)).Error)

	out, err := f.svc.ListByBuyer(ctx, f.buyer.ID)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, second.TransactionID, out[0].ID)
	assert.Equal(t, "Reef Trust", out[0].NgoName)
}

func TestGetByID_NotFound(t *testing.T) {
	f := setup(t)
	_, err := f.svc.GetByID(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestIDGenerator_NoCollisions(t *testing.T) {
	svc := NewService(nil, nil, nil)
	seen := make(map[string]struct{}, 20000)
	for i := 0; i < 10000; i++ {
		id := svc.NewID()
		cert := certificateID(svc.NewID())
		_, dup := seen[id]
		require.False(t, dup, "duplicate id %s", id)
		seen[id] = struct{}{}
		_, dup = seen[cert]
		require.False(t, dup, "duplicate certificate id %s", cert)
		seen[cert] = struct{}{}
	}
}
