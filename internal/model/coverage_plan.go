package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CoveragePlan is the duration-based plan attached to an inspection-linked
// warranty.
type CoveragePlan struct {
	ID             string          `json:"id" gorm:"type:varchar(36);primaryKey"`
	Name           string          `json:"name" gorm:"type:varchar(100);not null"`
	DurationMonths int             `json:"durationMonths" gorm:"not null"`
	Price          decimal.Decimal `json:"price" gorm:"type:numeric(12,2);not null"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

func (CoveragePlan) TableName() string {
	return "coverage_plans"
}

func (p *CoveragePlan) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// CoveragePlanRequest creates a coverage plan.
type CoveragePlanRequest struct {
	Name           string          `json:"name" binding:"required"`
	DurationMonths int             `json:"durationMonths" binding:"required"`
	Price          decimal.Decimal `json:"price"`
}
