package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// WarrantyPlan prices the three purchasable coverage tiers for devices whose
// price falls within [RangeStart, RangeEnd]. Bands are operator-curated and
// may overlap or leave gaps.
type WarrantyPlan struct {
	ID                    string          `json:"id" gorm:"type:varchar(36);primaryKey"`
	RangeStart            int64           `json:"rangeStart" gorm:"not null;index"`
	RangeEnd              int64           `json:"rangeEnd" gorm:"not null"`
	ExtendedWarranty1Year decimal.Decimal `json:"extendedWarranty1Year" gorm:"type:numeric(12,2);not null"`
	ExtendedWarranty2Year decimal.Decimal `json:"extendedWarranty2Year" gorm:"type:numeric(12,2);not null"`
	ScreenProtection1Year decimal.Decimal `json:"screenProtection1Year" gorm:"type:numeric(12,2);not null"`
	Range                 string          `json:"range" gorm:"-"`
	CreatedAt             time.Time       `json:"createdAt"`
	UpdatedAt             time.Time       `json:"updatedAt"`
}

func (WarrantyPlan) TableName() string {
	return "warranty_plans"
}

// BeforeCreate assigns an ID when the caller did not.
func (p *WarrantyPlan) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// AfterFind renders the display range after loading.
func (p *WarrantyPlan) AfterFind(tx *gorm.DB) error {
	p.Range = FormatPriceRange(p.RangeStart, p.RangeEnd)
	return nil
}

// FormatPriceRange renders a band as "₹{start} – ₹{end}".
func FormatPriceRange(start, end int64) string {
	return fmt.Sprintf("₹%d – ₹%d", start, end)
}

// PriceRange is the band submitted with a plan.
type PriceRange struct {
	Start *int64 `json:"start"`
	End   *int64 `json:"end"`
}

// WarrantyPlanRequest is the create/update payload for a plan.
type WarrantyPlanRequest struct {
	Range                 *PriceRange      `json:"range"`
	ExtendedWarranty1Year *decimal.Decimal `json:"extendedWarranty1Year"`
	ExtendedWarranty2Year *decimal.Decimal `json:"extendedWarranty2Year"`
	ScreenProtection1Year *decimal.Decimal `json:"screenProtection1Year"`
}
