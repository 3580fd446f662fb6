package database

import (
	"context"
	"errors"

	"tidechain-backend/internal/domain"

	"gorm.io/gorm"
)

// ErrInsufficientCredits is returned by CreateWithInventory when the project
// does not hold enough credits for the purchase.
var ErrInsufficientCredits = errors.New("insufficient credits")

// TransactionRepository stores credit purchases and reads them back joined
// with project and user display fields.
type TransactionRepository struct {
	DB *gorm.DB
}

// Create inserts tx in a single statement.
func (r *TransactionRepository) Create(ctx context.Context, tx *domain.Transaction) error {
	return r.DB.WithContext(ctx).Create(tx).Error
}

// CreateWithInventory decrements the project's total_credits and inserts tx in
// one database transaction. The decrement is conditional, so concurrent
// purchases can never take total_credits below zero.
func (r *TransactionRepository) CreateWithInventory(ctx context.Context, tx *domain.Transaction) error {
	return r.DB.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		res := db.Model(&domain.Project{}).
			Where("id = ? AND status = ? AND total_credits IS NOT NULL AND total_credits >= ?",
				tx.ProjectID, domain.ProjectVerified, tx.CreditsPurchased).
			UpdateColumn("total_credits", gorm.Expr("total_credits - ?", tx.CreditsPurchased))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInsufficientCredits
		}
		return db.Create(tx).Error
	})
}

func (r *TransactionRepository) joined(ctx context.Context) *gorm.DB {
	return r.DB.WithContext(ctx).
		Table("transactions").
		Select(`transactions.*,
			projects.name AS project_name,
			projects.location AS location,
			projects.land_size AS land_size,
			COALESCE(ngo.name, '') AS ngo_name,
			COALESCE(buyer.name, '') AS buyer_name`).
		Joins("JOIN projects ON projects.id = transactions.project_id").
		Joins("LEFT JOIN users ngo ON ngo.id = projects.ngo_id").
		Joins("LEFT JOIN users buyer ON buyer.id = transactions.buyer_id")
}

// ListByBuyer returns the buyer's purchases, newest first.
func (r *TransactionRepository) ListByBuyer(ctx context.Context, buyerID uint) ([]domain.TransactionView, error) {
	out := []domain.TransactionView{}
	err := r.joined(ctx).
		Where("transactions.buyer_id = ?", buyerID).
		Order("transactions.created_at DESC, transactions.id DESC").
		Scan(&out).Error
	return out, err
}

// FindView returns domain.ErrNotFound when no transaction has id.
func (r *TransactionRepository) FindView(ctx context.Context, id string) (*domain.TransactionView, error) {
	var out []domain.TransactionView
	if err := r.joined(ctx).Where("transactions.id = ?", id).Limit(1).Scan(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, domain.ErrNotFound
	}
	return &out[0], nil
}
