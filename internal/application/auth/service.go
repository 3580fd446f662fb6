package auth

import (
	"context"
	"errors"
	"strings"

	"tidechain-backend/internal/domain"
	"tidechain-backend/internal/infrastructure/database"
	"tidechain-backend/internal/pkg/constants"
	"tidechain-backend/internal/pkg/validation"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

// UserStore abstracts user persistence (GORM in production, doubles in tests).
// Create returns database.ErrDuplicateEmail for a taken email.
type UserStore interface {
	Create(ctx context.Context, u *domain.User) error
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
}

// Welcomer is told about new registrations.
type Welcomer interface {
	Welcome(ctx context.Context, name, email, role string)
}

type Service struct {
	Users    UserStore
	Tokens   *TokenService
	Welcomer Welcomer
}

// RegisterInput for the registration request body.
type RegisterInput struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"required,oneof=ngo buyer"`
}

// LoginInput for the login request body.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Session is returned by register and login.
type Session struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

// Register creates an ngo or buyer account and signs it in.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Name == "" {
		return nil, domain.Validation("Name is required")
	}
	if !validation.IsValidEmail(in.Email) {
		return nil, domain.Validation("Invalid email format")
	}
	if !validation.IsValidPassword(in.Password) {
		return nil, domain.Validation("Password must be at least 6 characters")
	}
	if !constants.IsRegistrableRole(in.Role) {
		return nil, domain.Validation("Role must be ngo or buyer")
	}

	u, err := s.createUser(ctx, in.Name, in.Email, in.Password, in.Role)
	if err != nil {
		return nil, err
	}
	if s.Welcomer != nil {
		s.Welcomer.Welcome(ctx, u.Name, u.Email, u.Role)
	}
	return s.session(u)
}

// Login verifies email and password.
func (s *Service) Login(ctx context.Context, in LoginInput) (*Session, error) {
	if strings.TrimSpace(in.Email) == "" || in.Password == "" {
		return nil, ErrEmailPasswordRequired
	}
	u, err := s.Users.FindByEmail(ctx, in.Email)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, domain.Persistence("Login failed", err)
	}
	if u.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.session(u)
}

// EnsureAdmin creates the admin account if no user holds email yet.
// Existing accounts are left untouched.
func (s *Service) EnsureAdmin(ctx context.Context, name, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil
	}
	existing, err := s.Users.FindByEmail(ctx, email)
	if err == nil {
		if existing.Role != constants.Admin {
			log.Warn().Str("email", email).Str("role", existing.Role).Msg("admin seed email belongs to a non-admin account")
		}
		return nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	if !validation.IsValidPassword(password) {
		return domain.Validation("ADMIN_PASSWORD must be at least 6 characters")
	}
	if _, err := s.createUser(ctx, name, email, password, constants.Admin); err != nil {
		return err
	}
	log.Info().Str("email", email).Msg("admin account seeded")
	return nil
}

func (s *Service) createUser(ctx context.Context, name, email, password, role string) (*domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := &domain.User{Name: name, Email: email, PasswordHash: string(hash), Role: role}
	if err := s.Users.Create(ctx, u); err != nil {
		if errors.Is(err, database.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, domain.Persistence("Registration failed", err)
	}
	return u, nil
}

func (s *Service) session(u *domain.User) (*Session, error) {
	token, err := s.Tokens.Issue(u.ID, u.Email, u.Role)
	if err != nil {
		return nil, domain.Persistence("Failed to issue token", err)
	}
	return &Session{Token: token, User: u}, nil
}
