package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"warranty-platform/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrAccessRuleNotFound is returned when deleting a rule that does not exist.
var ErrAccessRuleNotFound = errors.New("access rule not found")

// AccessRuleStore persists the role policy loaded into the enforcer.
type AccessRuleStore interface {
	LoadRules(ctx context.Context) ([]model.AccessRule, error)
	SaveRule(ctx context.Context, rule model.AccessRule) error
	DeleteRule(ctx context.Context, id string) error
}

// AuditLog records and lists audit entries.
type AuditLog interface {
	Record(ctx context.Context, entry model.AuditEntry) error
	List(ctx context.Context, from, to time.Time) ([]model.AuditEntry, error)
}

// DatabaseAccessStore is the GORM-backed AccessRuleStore and AuditLog.
type DatabaseAccessStore struct {
	db *gorm.DB
}

// NewDatabaseAccessStore creates a new database-backed access store
func NewDatabaseAccessStore(db *gorm.DB) *DatabaseAccessStore {
	return &DatabaseAccessStore{db: db}
}

func accessRuleFromDB(dbRule model.AccessRuleDB) model.AccessRule {
	return model.AccessRule{
		ID:        dbRule.ID,
		Role:      dbRule.Role,
		Resource:  dbRule.Resource,
		Action:    dbRule.Action,
		CreatedAt: dbRule.CreatedAt,
		CreatedBy: dbRule.CreatedBy,
	}
}

func auditEntryToDB(entry model.AuditEntry) (*model.AuditEntryDB, error) {
	var beforeJSON, afterJSON *string

	if entry.Before != nil {
		bytes, err := json.Marshal(entry.Before)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal before state: %w", err)
		}
		jsonStr := string(bytes)
		beforeJSON = &jsonStr
	}

	if entry.After != nil {
		bytes, err := json.Marshal(entry.After)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal after state: %w", err)
		}
		jsonStr := string(bytes)
		afterJSON = &jsonStr
	}

	return &model.AuditEntryDB{
		ID:        entry.ID,
		Type:      entry.Type,
		Before:    beforeJSON,
		After:     afterJSON,
		ChangedBy: entry.ChangedBy,
		ChangedAt: entry.ChangedAt,
		Reason:    entry.Reason,
	}, nil
}

func auditEntryFromDB(dbEntry model.AuditEntryDB) (model.AuditEntry, error) {
	var before, after interface{}

	if dbEntry.Before != nil && *dbEntry.Before != "" {
		if err := json.Unmarshal([]byte(*dbEntry.Before), &before); err != nil {
			return model.AuditEntry{}, fmt.Errorf("failed to unmarshal before state: %w", err)
		}
	}

	if dbEntry.After != nil && *dbEntry.After != "" {
		if err := json.Unmarshal([]byte(*dbEntry.After), &after); err != nil {
			return model.AuditEntry{}, fmt.Errorf("failed to unmarshal after state: %w", err)
		}
	}

	return model.AuditEntry{
		ID:        dbEntry.ID,
		Type:      dbEntry.Type,
		Before:    before,
		After:     after,
		ChangedBy: dbEntry.ChangedBy,
		ChangedAt: dbEntry.ChangedAt,
		Reason:    dbEntry.Reason,
	}, nil
}

func (s *DatabaseAccessStore) LoadRules(ctx context.Context) ([]model.AccessRule, error) {
	var dbRules []model.AccessRuleDB
	if err := s.db.WithContext(ctx).Order("role, resource, action").Find(&dbRules).Error; err != nil {
		return nil, fmt.Errorf("failed to load access rules from database: %w", err)
	}

	rules := make([]model.AccessRule, len(dbRules))
	for i, dbRule := range dbRules {
		rules[i] = accessRuleFromDB(dbRule)
	}
	return rules, nil
}

// SaveRule inserts a rule unless an identical role/resource/action rule
// already exists.
func (s *DatabaseAccessStore) SaveRule(ctx context.Context, rule model.AccessRule) error {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.AccessRuleDB{}).
		Where("role = ? AND resource = ? AND action = ?", rule.Role, rule.Resource, rule.Action).
		Count(&count).Error
	if err != nil {
		return fmt.Errorf("failed to check existing access rule: %w", err)
	}
	if count > 0 {
		return nil
	}

	dbRule := model.AccessRuleDB{
		ID:        rule.ID,
		Role:      rule.Role,
		Resource:  rule.Resource,
		Action:    rule.Action,
		CreatedBy: rule.CreatedBy,
	}
	if dbRule.ID == "" {
		dbRule.ID = uuid.NewString()
	}
	if dbRule.CreatedBy == "" {
		dbRule.CreatedBy = "system"
	}

	if err := s.db.WithContext(ctx).Create(&dbRule).Error; err != nil {
		return fmt.Errorf("failed to save access rule to database: %w", err)
	}
	return nil
}

func (s *DatabaseAccessStore) DeleteRule(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&model.AccessRuleDB{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete access rule from database: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrAccessRuleNotFound, id)
	}
	return nil
}

func (s *DatabaseAccessStore) Record(ctx context.Context, entry model.AuditEntry) error {
	dbEntry, err := auditEntryToDB(entry)
	if err != nil {
		return fmt.Errorf("failed to convert audit entry for database: %w", err)
	}

	if dbEntry.ID == "" {
		dbEntry.ID = uuid.NewString()
	}
	if dbEntry.ChangedAt.IsZero() {
		dbEntry.ChangedAt = time.Now()
	}

	if err := s.db.WithContext(ctx).Create(dbEntry).Error; err != nil {
		return fmt.Errorf("failed to record audit entry: %w", err)
	}
	return nil
}

func (s *DatabaseAccessStore) List(ctx context.Context, from, to time.Time) ([]model.AuditEntry, error) {
	var dbEntries []model.AuditEntryDB

	query := s.db.WithContext(ctx).Model(&model.AuditEntryDB{})
	if !from.IsZero() {
		query = query.Where("changed_at >= ?", from)
	}
	if !to.IsZero() {
		query = query.Where("changed_at <= ?", to)
	}

	if err := query.Order("changed_at DESC").Find(&dbEntries).Error; err != nil {
		return nil, fmt.Errorf("failed to get audit log from database: %w", err)
	}

	entries := make([]model.AuditEntry, len(dbEntries))
	for i, dbEntry := range dbEntries {
		entry, err := auditEntryFromDB(dbEntry)
		if err != nil {
			return nil, fmt.Errorf("failed to convert audit entry from database: %w", err)
		}
		entries[i] = entry
	}
	return entries, nil
}
