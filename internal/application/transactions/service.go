package transactions

import (
	"context"
	"errors"

	"tidechain-backend/internal/domain"
	"tidechain-backend/internal/infrastructure/database"
	"tidechain-backend/internal/infrastructure/metrics"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// Repository persists purchases. CreateWithInventory must return
// database.ErrInsufficientCredits when the project cannot cover the purchase.
type Repository interface {
	Create(ctx context.Context, tx *domain.Transaction) error
	CreateWithInventory(ctx context.Context, tx *domain.Transaction) error
	ListByBuyer(ctx context.Context, buyerID uint) ([]domain.TransactionView, error)
	FindView(ctx context.Context, id string) (*domain.TransactionView, error)
}

// ProjectFinder loads the project a purchase is made against.
type ProjectFinder interface {
	FindByID(ctx context.Context, id uint) (*domain.Project, error)
}

// Notifier is told about issued purchases. Failures never fail the purchase.
type Notifier interface {
	PurchaseIssued(ctx context.Context, buyerID uint, receipt Receipt)
}

type Service struct {
	Repo     Repository
	Projects ProjectFinder
	Metrics  *metrics.Metrics
	Notifier Notifier

	// EnforceInventory decrements project total_credits on every purchase
	// and refuses purchases the remaining credits cannot cover.
	EnforceInventory bool

	// NewID generates transaction ids. Certificate ids are derived from a
	// separate call, never from the transaction id.
	NewID func() string
}

func NewService(repo Repository, projects ProjectFinder, m *metrics.Metrics) *Service {
	return &Service{Repo: repo, Projects: projects, Metrics: m, NewID: uuid.NewString}
}

type PurchaseInput struct {
	ProjectID        uint    `json:"project_id" validate:"required"`
	CreditsPurchased float64 `json:"credits_purchased" validate:"gt=0"`
}

// Receipt is what a buyer gets back from a purchase.
type Receipt struct {
	TransactionID    string  `json:"transaction_id"`
	CertificateID    string  `json:"certificate_id"`
	ProjectID        uint    `json:"project_id"`
	ProjectName      string  `json:"project_name"`
	CreditsPurchased float64 `json:"credits_purchased"`
	PricePerCredit   float64 `json:"price_per_credit"`
	TotalAmount      float64 `json:"total_amount"`
}

// Purchase issues a transaction and certificate against a verified project.
// A missing and an unverified project fail identically.
func (s *Service) Purchase(ctx context.Context, buyerID uint, in PurchaseInput) (*Receipt, error) {
	if !(in.CreditsPurchased > 0) {
		return nil, domain.Validation("Credits purchased must be greater than 0")
	}

	project, err := s.Projects.FindByID(ctx, in.ProjectID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		s.Metrics.IncPurchase("failed")
		return nil, domain.Persistence("Failed to create transaction", err)
	}
	if project == nil || project.Status != domain.ProjectVerified {
		s.Metrics.IncPurchase("unverified")
		return nil, domain.ErrNotFoundOrUnverified
	}

	price := decimal.NewFromFloat(project.EffectivePrice())
	total := decimal.NewFromFloat(in.CreditsPurchased).Mul(price)

	tx := &domain.Transaction{
		ID:               s.NewID(),
		BuyerID:          buyerID,
		ProjectID:        project.ID,
		CreditsPurchased: in.CreditsPurchased,
		PricePerCredit:   price.InexactFloat64(),
		TotalAmount:      total.InexactFloat64(),
		CertificateID:    certificateID(s.NewID()),
	}

	if s.EnforceInventory {
		err = s.Repo.CreateWithInventory(ctx, tx)
	} else {
		err = s.Repo.Create(ctx, tx)
	}
	if errors.Is(err, database.ErrInsufficientCredits) {
		s.Metrics.IncPurchase("insufficient")
		return nil, domain.Conflict("Not enough credits available for this project")
	}
	if err != nil {
		s.Metrics.IncPurchase("failed")
		return nil, domain.Persistence("Failed to create transaction", err)
	}

	s.Metrics.IncPurchase("issued")
	s.Metrics.AddCredits(tx.CreditsPurchased)
	log.Ctx(ctx).Info().
		Str("transaction_id", tx.ID).
		Str("certificate_id", tx.CertificateID).
		Uint("project_id", tx.ProjectID).
		Uint("buyer_id", buyerID).
		Float64("credits", tx.CreditsPurchased).
		Msg("credits issued")

	receipt := &Receipt{
		TransactionID:    tx.ID,
		CertificateID:    tx.CertificateID,
		ProjectID:        project.ID,
		ProjectName:      project.Name,
		CreditsPurchased: tx.CreditsPurchased,
		PricePerCredit:   tx.PricePerCredit,
		TotalAmount:      tx.TotalAmount,
	}
	if s.Notifier != nil {
		s.Notifier.PurchaseIssued(ctx, buyerID, *receipt)
	}
	return receipt, nil
}

// ListByBuyer returns the buyer's purchases with project and NGO names, newest first.
func (s *Service) ListByBuyer(ctx context.Context, buyerID uint) ([]domain.TransactionView, error) {
	out, err := s.Repo.ListByBuyer(ctx, buyerID)
	if err != nil {
		return nil, domain.Persistence("Failed to fetch transactions", err)
	}
	if out == nil {
		out = []domain.TransactionView{}
	}
	return out, nil
}

// GetByID returns a purchase joined with the fields a certificate prints.
func (s *Service) GetByID(ctx context.Context, id string) (*domain.TransactionView, error) {
	v, err := s.Repo.FindView(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.NotFound("Transaction not found")
	}
	if err != nil {
		return nil, domain.Persistence("Failed to fetch transaction", err)
	}
	return v, nil
}

func certificateID(raw string) string {
	return "CERT-" + raw
}
