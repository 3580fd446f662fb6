package domain

import "time"

type ProjectStatus string

const (
	ProjectPending  ProjectStatus = "pending"
	ProjectVerified ProjectStatus = "verified"
	ProjectRejected ProjectStatus = "rejected"
)

// DefaultPricePerCredit applies until an admin prices the project.
const DefaultPricePerCredit = 25.0

// Project is a blue carbon restoration project registered by an NGO.
type Project struct {
	ID             uint          `gorm:"column:id;primaryKey" json:"id"`
	NgoID          uint          `gorm:"column:ngo_id;not null;index" json:"ngo_id"`
	Name           string        `gorm:"column:name;not null" json:"name"`
	LandSize       float64       `gorm:"column:land_size;not null" json:"land_size"`
	Location       string        `gorm:"column:location;not null" json:"location"`
	Description    *string       `gorm:"column:description" json:"description"`
	Status         ProjectStatus `gorm:"column:status;type:varchar(16);not null;default:'pending';index" json:"status"`
	PricePerCredit float64       `gorm:"column:price_per_credit;not null;default:25" json:"price_per_credit"`
	TotalCredits   *float64      `gorm:"column:total_credits" json:"total_credits"`
	CreatedAt      time.Time     `gorm:"column:created_at" json:"created_at"`
	UpdatedAt      time.Time     `gorm:"column:updated_at" json:"updated_at"`
}

func (Project) TableName() string {
	return "projects"
}

// EffectivePrice returns the price per credit, falling back to the default
// for records that never had one written.
func (p *Project) EffectivePrice() float64 {
	if p.PricePerCredit <= 0 {
		return DefaultPricePerCredit
	}
	return p.PricePerCredit
}
