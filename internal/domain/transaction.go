package domain

import (
	"time"
)

// Transaction is an immutable credit purchase. CertificateID is the canonical
// reference number printed on the certificate.
type Transaction struct {
	ID               string    `gorm:"column:id;type:varchar(64);primaryKey" json:"id"`
	BuyerID          uint      `gorm:"column:buyer_id;not null;index" json:"buyer_id"`
	ProjectID        uint      `gorm:"column:project_id;not null;index" json:"project_id"`
	CreditsPurchased float64   `gorm:"column:credits_purchased;not null" json:"credits_purchased"`
	PricePerCredit   float64   `gorm:"column:price_per_credit;not null" json:"price_per_credit"`
	TotalAmount      float64   `gorm:"column:total_amount;not null" json:"total_amount"`
	CertificateID    string    `gorm:"column:certificate_id;type:varchar(64);not null;uniqueIndex" json:"certificate_id"`
	CreatedAt        time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Transaction) TableName() string {
	return "transactions"
}

// TransactionView is a transaction joined with the project and party names
// used by buyer listings and certificate rendering.
type TransactionView struct {
	Transaction
	ProjectName string  `json:"project_name"`
	Location    string  `json:"location"`
	LandSize    float64 `json:"land_size"`
	NgoName     string  `json:"ngo_name"`
	BuyerName   string  `json:"buyer_name,omitempty"`
}
