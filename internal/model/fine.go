package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// FineStatus is the payment state of a fine. Unpaid -> Paid is the only
// transition.
type FineStatus string

const (
	FineStatusUnpaid FineStatus = "Unpaid"
	FineStatusPaid   FineStatus = "Paid"
)

// Fine is a penalty charged to a phone checker for an inspection infraction.
type Fine struct {
	ID             string          `json:"id" gorm:"type:varchar(36);primaryKey"`
	PhoneCheckerID string          `json:"phoneCheckerId" gorm:"type:varchar(36);not null;index"`
	InspectionID   string          `json:"inspectionId" gorm:"type:varchar(36);index"`
	Model          string          `json:"model" gorm:"type:varchar(150)"`
	Amount         decimal.Decimal `json:"amount" gorm:"type:numeric(12,2);not null"`
	Status         FineStatus      `json:"status" gorm:"type:varchar(10);not null;default:'Unpaid';index"`
	Comment        string          `json:"comment" gorm:"type:text"`
	OrderID        *string         `json:"orderId,omitempty" gorm:"type:varchar(64)"`
	PaidAt         *time.Time      `json:"paidAt,omitempty"`
	CreatedAt      time.Time       `json:"timestamp"`
}

func (Fine) TableName() string {
	return "fines"
}

func (f *Fine) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	if f.Status == "" {
		f.Status = FineStatusUnpaid
	}
	return nil
}

// IssueFineRequest issues a fine against a phone checker.
type IssueFineRequest struct {
	PhoneCheckerID string          `json:"phoneCheckerId" binding:"required"`
	InspectionID   string          `json:"inspectionId"`
	Model          string          `json:"model"`
	Amount         decimal.Decimal `json:"amount"`
	Comment        string          `json:"comment"`
}

// CreateFineOrderRequest starts a payment for a fine.
type CreateFineOrderRequest struct {
	FineID string `json:"fineId" binding:"required"`
}

// PayFineRequest is the client-reported payment callback.
type PayFineRequest struct {
	Status  string `json:"status" binding:"required"`
	OrderID string `json:"orderId" binding:"required"`
}
