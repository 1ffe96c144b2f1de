package model

import (
	"time"
)

// AccessRule grants a role an action on a resource.
type AccessRule struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Resource  string    `json:"resource"`
	Action    string    `json:"action"`
	CreatedAt time.Time `json:"created_at"`
	CreatedBy string    `json:"created_by"`
}

// AccessRuleRequest grants a role an action on a resource.
type AccessRuleRequest struct {
	Role     string `json:"role" binding:"required"`
	Resource string `json:"resource" binding:"required"`
	Action   string `json:"action" binding:"required"`
}

// AuditEntry records a state change worth keeping a trail of.
type AuditEntry struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"` // "plan_create", "fine_paid", ...
	Before    interface{} `json:"before,omitempty"`
	After     interface{} `json:"after,omitempty"`
	ChangedBy string      `json:"changed_by"`
	ChangedAt time.Time   `json:"changed_at"`
	Reason    string      `json:"reason,omitempty"`
}

// Database models for GORM
type AccessRuleDB struct {
	ID        string    `gorm:"type:varchar(36);primaryKey"`
	Role      string    `gorm:"type:varchar(50);not null;index"`
	Resource  string    `gorm:"type:varchar(50);not null;index"`
	Action    string    `gorm:"type:varchar(20);not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	CreatedBy string    `gorm:"not null"`
}

func (AccessRuleDB) TableName() string {
	return "access_rules"
}

// AuditEntryDB is the database model for audit entries.
type AuditEntryDB struct {
	ID        string    `gorm:"type:varchar(36);primaryKey"`
	Type      string    `gorm:"type:varchar(50);not null;index"`
	Before    *string   `gorm:"type:text"`
	After     *string   `gorm:"type:text"`
	ChangedBy string    `gorm:"not null;index"`
	ChangedAt time.Time `gorm:"index"`
	Reason    string    `gorm:"type:text"`
}

func (AuditEntryDB) TableName() string {
	return "audit_entries"
}
