package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InspectionReport is filed by a phone checker after examining a device.
type InspectionReport struct {
	ID             string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	PhoneCheckerID string    `json:"phoneCheckerId" gorm:"type:varchar(36);not null;index"`
	ShopOwnerID    string    `json:"shopOwnerId" gorm:"type:varchar(36);not null;index"`
	ShopName       string    `json:"shopName" gorm:"type:varchar(150)"`
	DeviceModel    string    `json:"deviceModel" gorm:"type:varchar(150);not null"`
	IMEI           string    `json:"imei" gorm:"type:varchar(20);index"`
	Condition      string    `json:"condition" gorm:"type:varchar(50)"`
	Notes          string    `json:"notes" gorm:"type:text"`
	CreatedAt      time.Time `json:"createdAt"`
}

func (InspectionReport) TableName() string {
	return "inspection_reports"
}

func (r *InspectionReport) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// InspectionRequest files a new inspection report.
type InspectionRequest struct {
	ShopOwnerID string `json:"shopOwnerId" binding:"required"`
	ShopName    string `json:"shopName"`
	DeviceModel string `json:"deviceModel" binding:"required"`
	IMEI        string `json:"imei"`
	Condition   string `json:"condition"`
	Notes       string `json:"notes"`
}
