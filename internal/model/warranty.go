package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Claim states of an issued warranty.
const (
	ClaimStatusNone     = "None"
	ClaimStatusOpen     = "Open"
	ClaimStatusApproved = "Approved"
	ClaimStatusRejected = "Rejected"
)

// WarrantyCustomer identifies the device owner on an inspection-linked
// warranty.
type WarrantyCustomer struct {
	CustomerName  string `json:"customerName" gorm:"type:varchar(150)"`
	CustomerPhone string `json:"customerPhone" gorm:"type:varchar(20);index"`
	IMEI          string `json:"imei" gorm:"type:varchar(20)"`
}

// Warranty is issued by a shop owner against an inspection report. It is
// immutable once issued except for ClaimStatus.
type Warranty struct {
	ID                 string            `json:"id" gorm:"type:varchar(36);primaryKey"`
	Customer           WarrantyCustomer  `json:"customer" gorm:"embedded;embeddedPrefix:customer_"`
	InspectionReportID string            `json:"inspectionReportId" gorm:"type:varchar(36);not null;index"`
	InspectionReport   *InspectionReport `json:"inspectionReport,omitempty" gorm:"foreignKey:InspectionReportID"`
	CoveragePlanID     string            `json:"warrantyPlanId" gorm:"type:varchar(36);index"`
	CoveragePlan       *CoveragePlan     `json:"warrantyPlan,omitempty" gorm:"foreignKey:CoveragePlanID"`
	IssueDate          time.Time         `json:"issueDate" gorm:"not null"`
	ExpiryDate         *time.Time        `json:"expiryDate,omitempty" gorm:"-"`
	ClaimStatus        string            `json:"claimStatus" gorm:"type:varchar(20);default:'None'"`
	CreatedAt          time.Time         `json:"createdAt"`
}

func (Warranty) TableName() string {
	return "warranties"
}

func (w *Warranty) BeforeCreate(tx *gorm.DB) error {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	if w.ClaimStatus == "" {
		w.ClaimStatus = ClaimStatusNone
	}
	return nil
}

// IsBillable reports whether the record is complete enough for invoice and
// messaging exports: a customer name and a resolved plan.
func (w *Warranty) IsBillable() bool {
	return strings.TrimSpace(w.Customer.CustomerName) != "" && w.CoveragePlan != nil
}

// IssueWarrantyRequest issues a warranty for an inspected device.
type IssueWarrantyRequest struct {
	Customer           WarrantyCustomer `json:"customer"`
	InspectionReportID string           `json:"inspectionReportId" binding:"required"`
	CoveragePlanID     string           `json:"warrantyPlanId" binding:"required"`
	IssueDate          *time.Time       `json:"issueDate"`
}
