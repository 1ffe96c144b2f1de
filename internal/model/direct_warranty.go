package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DeviceDetails describes the purchased device at purchase time.
type DeviceDetails struct {
	DeviceName   string          `json:"deviceName" gorm:"type:varchar(150);not null"`
	PurchaseDate string          `json:"purchaseDate" gorm:"type:varchar(30)"`
	DevicePrice  decimal.Decimal `json:"devicePrice" gorm:"type:numeric(12,2)"`
}

// CustomerDetails identifies the buyer of a direct warranty.
type CustomerDetails struct {
	CustomerName  string `json:"customerName" gorm:"type:varchar(150);not null"`
	CustomerEmail string `json:"customerEmail" gorm:"type:varchar(150)"`
	CustomerPhone string `json:"customerPhone" gorm:"type:varchar(20);not null;index"`
}

// PlanDetails is a snapshot of the purchased tier and its price.
type PlanDetails struct {
	PlanType  string          `json:"planType" gorm:"type:varchar(60);not null"`
	PlanPrice decimal.Decimal `json:"planPrice" gorm:"type:numeric(12,2);not null"`
}

// DirectWarranty is a point-in-time purchase receipt from the landing page.
// It copies device, customer and plan data instead of referencing the
// catalog, so later catalog edits never rewrite past purchases.
type DirectWarranty struct {
	ID              string          `json:"id" gorm:"type:varchar(36);primaryKey"`
	PaymentOrderID  string          `json:"paymentOrderId" gorm:"type:varchar(64);not null;index"`
	DeviceDetails   DeviceDetails   `json:"deviceDetails" gorm:"embedded;embeddedPrefix:device_"`
	CustomerDetails CustomerDetails `json:"customerDetails" gorm:"embedded;embeddedPrefix:customer_"`
	PlanDetails     PlanDetails     `json:"planDetails" gorm:"embedded;embeddedPrefix:plan_"`
	CreatedAt       time.Time       `json:"createdAt"`
}

func (DirectWarranty) TableName() string {
	return "direct_warranties"
}

func (d *DirectWarranty) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return nil
}

// DirectWarrantyRequest records a landing-page purchase.
type DirectWarrantyRequest struct {
	PaymentOrderID  string          `json:"paymentOrderId"`
	DeviceDetails   DeviceDetails   `json:"deviceDetails"`
	CustomerDetails CustomerDetails `json:"customerDetails"`
	PlanDetails     PlanDetails     `json:"planDetails"`
}
