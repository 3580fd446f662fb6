package auth

import (
	"context"
	"testing"
	"time"

	"tidechain-backend/internal/domain"
	"tidechain-backend/internal/infrastructure/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWelcomer struct{ emails []string }

func (w *recordingWelcomer) Welcome(_ context.Context, _, email, _ string) {
	w.emails = append(w.emails, email)
}

func setupService(t *testing.T) (*Service, *recordingWelcomer) {
	t.Helper()
	db, err := database.Open("sqlite", ":memory:")
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	w := &recordingWelcomer{}
	return &Service{
		Users:    &database.UserRepository{DB: db},
		Tokens:   NewTokenService("secret", "tidechain", time.Hour),
		Welcomer: w,
	}, w
}

func TestRegisterAndLogin(t *testing.T) {
	svc, w := setupService(t)
	ctx := context.Background()

	sess, err := svc.Register(ctx, RegisterInput{Name: "Reef Trust", Email: "NGO@Reef.org", Password: "mangrove", Role: "ngo"})
	require.NoError(t, err)
	assert.Equal(t, "ngo@reef.org", sess.User.Email)
	assert.NotEqual(t, "mangrove", sess.User.PasswordHash)
	assert.Equal(t, []string{"ngo@reef.org"}, w.emails)

	claims, err := svc.Tokens.Verify(sess.Token)
	require.NoError(t, err)
	assert.Equal(t, sess.User.ID, claims.UserID)
	assert.Equal(t, "ngo", claims.Role)

	login, err := svc.Login(ctx, LoginInput{Email: "ngo@reef.org", Password: "mangrove"})
	require.NoError(t, err)
	assert.Equal(t, sess.User.ID, login.User.ID)
}

func TestRegister_Validation(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	cases := []RegisterInput{
		{Name: "", Email: "a@b.co", Password: "secret", Role: "ngo"},
		{Name: "A", Email: "nope", Password: "secret", Role: "ngo"},
		{Name: "A", Email: "a@b.co", Password: "123", Role: "ngo"},
		{Name: "A", Email: "a@b.co", Password: "secret", Role: "admin"},
	}
	for _, in := range cases {
		_, err := svc.Register(ctx, in)
		assert.ErrorIs(t, err, domain.ErrValidation, "%+v", in)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Name: "A", Email: "a@b.co", Password: "secret", Role: "buyer"})
	require.NoError(t, err)
	_, err = svc.Register(ctx, RegisterInput{Name: "B", Email: "A@B.co", Password: "secret", Role: "ngo"})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestLogin_BadCredentials(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, RegisterInput{Name: "A", Email: "a@b.co", Password: "secret", Role: "buyer"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, LoginInput{Email: "a@b.co", Password: "wrong!"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = svc.Login(ctx, LoginInput{Email: "nobody@b.co", Password: "secret"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = svc.Login(ctx, LoginInput{Email: "", Password: ""})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestEnsureAdmin(t *testing.T) {
	svc, w := setupService(t)
	ctx := context.Background()

	require.NoError(t, svc.EnsureAdmin(ctx, "Administrator", "Admin@TideChain.org", "changeme"))
	require.NoError(t, svc.EnsureAdmin(ctx, "Administrator", "admin@tidechain.org", "ignored"))

	sess, err := svc.Login(ctx, LoginInput{Email: "admin@tidechain.org", Password: "changeme"})
	require.NoError(t, err)
	assert.Equal(t, "admin", sess.User.Role)
	assert.Empty(t, w.emails)

	assert.NoError(t, svc.EnsureAdmin(ctx, "x", "", ""))
}
