package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Partner is a directory entry for a business partner.
type Partner struct {
	ID        string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	Name      string    `json:"name" gorm:"type:varchar(150);not null"`
	Address   string    `json:"address" gorm:"type:text"`
	Contact   string    `json:"contact" gorm:"type:varchar(30)"`
	Email     string    `json:"email" gorm:"type:varchar(150);not null;uniqueIndex"`
	Website   string    `json:"website" gorm:"type:varchar(255)"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Partner) TableName() string {
	return "partners"
}

func (p *Partner) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// PartnerRequest creates or replaces a partner.
type PartnerRequest struct {
	Name    string `json:"name" binding:"required"`
	Address string `json:"address"`
	Contact string `json:"contact"`
	Email   string `json:"email" binding:"required,email"`
	Website string `json:"website"`
}
