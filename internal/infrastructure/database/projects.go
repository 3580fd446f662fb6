package database

import (
	"context"
	"errors"

	"tidechain-backend/internal/domain"

	"gorm.io/gorm"
)

const newestFirst = "created_at DESC, id DESC"

// ProjectRepository stores projects in the projects table.
type ProjectRepository struct {
	DB *gorm.DB
}

func (r *ProjectRepository) Create(ctx context.Context, p *domain.Project) error {
	return r.DB.WithContext(ctx).Create(p).Error
}

func (r *ProjectRepository) ListByOwner(ctx context.Context, ngoID uint) ([]domain.Project, error) {
	var out []domain.Project
	err := r.DB.WithContext(ctx).Where("ngo_id = ?", ngoID).Order(newestFirst).Find(&out).Error
	return out, err
}

func (r *ProjectRepository) ListAll(ctx context.Context) ([]domain.Project, error) {
	var out []domain.Project
	err := r.DB.WithContext(ctx).Order(newestFirst).Find(&out).Error
	return out, err
}

func (r *ProjectRepository) ListByStatus(ctx context.Context, status domain.ProjectStatus) ([]domain.Project, error) {
	var out []domain.Project
	err := r.DB.WithContext(ctx).Where("status = ?", status).Order(newestFirst).Find(&out).Error
	return out, err
}

// FindByID returns domain.ErrNotFound when no project has id.
func (r *ProjectRepository) FindByID(ctx context.Context, id uint) (*domain.Project, error) {
	var p domain.Project
	err := r.DB.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Update writes only the given columns. Returns domain.ErrNotFound when no row matched.
func (r *ProjectRepository) Update(ctx context.Context, id uint, fields map[string]interface{}) error {
	res := r.DB.WithContext(ctx).Model(&domain.Project{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
