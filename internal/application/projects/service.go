package projects

import (
	"context"
	"errors"
	"strings"
	"time"

	"tidechain-backend/internal/domain"
	"tidechain-backend/internal/infrastructure/metrics"
	"tidechain-backend/internal/pkg/workflows"

	"github.com/rs/zerolog/log"
)

// Repository is the storage the project service needs. FindByID and Update
// return domain.ErrNotFound for a missing id.
type Repository interface {
	Create(ctx context.Context, p *domain.Project) error
	ListByOwner(ctx context.Context, ngoID uint) ([]domain.Project, error)
	ListAll(ctx context.Context) ([]domain.Project, error)
	ListByStatus(ctx context.Context, status domain.ProjectStatus) ([]domain.Project, error)
	FindByID(ctx context.Context, id uint) (*domain.Project, error)
	Update(ctx context.Context, id uint, fields map[string]interface{}) error
}

type Service struct {
	Repo    Repository
	Metrics *metrics.Metrics
	Now     func() time.Time

	states *workflows.StateMachine
}

func NewService(repo Repository, m *metrics.Metrics) *Service {
	return &Service{Repo: repo, Metrics: m, Now: time.Now, states: workflows.NewProjectStateMachine()}
}

type CreateInput struct {
	Name        string  `json:"name" validate:"required"`
	LandSize    float64 `json:"land_size" validate:"gt=0"`
	Location    string  `json:"location" validate:"required"`
	Description *string `json:"description"`
}

// UpdateInput carries the admin-editable fields. Nil fields are left as is.
type UpdateInput struct {
	Status         *domain.ProjectStatus `json:"status"`
	PricePerCredit *float64              `json:"price_per_credit"`
	TotalCredits   *float64              `json:"total_credits"`
}

// Create registers a pending project owned by ownerID and returns its id.
func (s *Service) Create(ctx context.Context, ownerID uint, in CreateInput) (uint, error) {
	name := strings.TrimSpace(in.Name)
	location := strings.TrimSpace(in.Location)
	if name == "" {
		return 0, domain.Validation("Project name is required")
	}
	if location == "" {
		return 0, domain.Validation("Location is required")
	}
	if !(in.LandSize > 0) {
		return 0, domain.Validation("Land size must be greater than 0")
	}
	var desc *string
	if in.Description != nil {
		if d := strings.TrimSpace(*in.Description); d != "" {
			desc = &d
		}
	}

	p := &domain.Project{
		NgoID:          ownerID,
		Name:           name,
		LandSize:       in.LandSize,
		Location:       location,
		Description:    desc,
		Status:         domain.ProjectPending,
		PricePerCredit: domain.DefaultPricePerCredit,
	}
	if err := s.Repo.Create(ctx, p); err != nil {
		return 0, domain.Persistence("Failed to create project", err)
	}
	s.Metrics.IncProjectCreated()
	log.Ctx(ctx).Info().Uint("project_id", p.ID).Uint("ngo_id", ownerID).Msg("project registered")
	return p.ID, nil
}

func (s *Service) ListByOwner(ctx context.Context, ownerID uint) ([]domain.Project, error) {
	out, err := s.Repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, domain.Persistence("Failed to fetch projects", err)
	}
	return nonNil(out), nil
}

func (s *Service) ListAll(ctx context.Context) ([]domain.Project, error) {
	out, err := s.Repo.ListAll(ctx)
	if err != nil {
		return nil, domain.Persistence("Failed to fetch projects", err)
	}
	return nonNil(out), nil
}

// ListVerified returns only verified projects, newest first.
func (s *Service) ListVerified(ctx context.Context) ([]domain.Project, error) {
	out, err := s.Repo.ListByStatus(ctx, domain.ProjectVerified)
	if err != nil {
		return nil, domain.Persistence("Failed to fetch verified projects", err)
	}
	verified := out[:0]
	for _, p := range out {
		if p.Status == domain.ProjectVerified {
			verified = append(verified, p)
		}
	}
	return nonNil(verified), nil
}

func (s *Service) GetByID(ctx context.Context, id uint) (*domain.Project, error) {
	p, err := s.Repo.FindByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.NotFound("Project not found")
	}
	if err != nil {
		return nil, domain.Persistence("Failed to fetch project", err)
	}
	return p, nil
}

// Update applies an admin status/pricing change. Only pending -> verified and
// pending -> rejected are transitions proper; rewriting the status of a
// project that already left pending is accepted, logged and counted.
func (s *Service) Update(ctx context.Context, id uint, in UpdateInput) (*domain.Project, error) {
	if in.Status == nil && in.PricePerCredit == nil && in.TotalCredits == nil {
		return nil, domain.Validation("No fields to update")
	}
	if in.Status != nil && !s.states.IsTarget(*in.Status) {
		return nil, domain.Validation("Status must be verified or rejected")
	}
	if in.PricePerCredit != nil && !(*in.PricePerCredit > 0) {
		return nil, domain.Validation("Price per credit must be greater than 0")
	}
	if in.TotalCredits != nil && !(*in.TotalCredits > 0) {
		return nil, domain.Validation("Total credits must be greater than 0")
	}

	current, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{"updated_at": s.nextUpdatedAt(current.UpdatedAt)}
	if in.Status != nil {
		fields["status"] = *in.Status
	}
	if in.PricePerCredit != nil {
		fields["price_per_credit"] = *in.PricePerCredit
	}
	if in.TotalCredits != nil {
		fields["total_credits"] = *in.TotalCredits
	}

	if err := s.Repo.Update(ctx, id, fields); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NotFound("Project not found")
		}
		return nil, domain.Persistence("Failed to update project", err)
	}

	if in.Status != nil {
		s.recordTransition(ctx, id, current.Status, *in.Status)
	}
	return s.GetByID(ctx, id)
}

func (s *Service) recordTransition(ctx context.Context, id uint, from, to domain.ProjectStatus) {
	if s.states.CanTransition(from, to) {
		s.Metrics.IncTransition(string(from), string(to), false)
		log.Ctx(ctx).Info().Uint("project_id", id).Str("from", string(from)).Str("to", string(to)).Msg("project status changed")
		return
	}
	s.Metrics.IncTransition(string(from), string(to), true)
	log.Ctx(ctx).Warn().Uint("project_id", id).Str("from", string(from)).Str("to", string(to)).
		Msg("project status rewritten after leaving pending")
}

// nextUpdatedAt returns a timestamp strictly after prev at microsecond
// resolution, the coarsest precision of the supported stores.
func (s *Service) nextUpdatedAt(prev time.Time) time.Time {
	now := s.Now().UTC().Truncate(time.Microsecond)
	if !now.After(prev) {
		now = prev.UTC().Truncate(time.Microsecond).Add(time.Microsecond)
	}
	return now
}

func nonNil(ps []domain.Project) []domain.Project {
	if ps == nil {
		return []domain.Project{}
	}
	return ps
}
