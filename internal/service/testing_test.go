package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"warranty-platform/internal/model"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.AccessRuleDB{},
		&model.AuditEntryDB{},
		&model.WarrantyPlan{},
		&model.CoveragePlan{},
		&model.InspectionReport{},
		&model.Warranty{},
		&model.DirectWarranty{},
		&model.Fine{},
		&model.PaymentOrder{},
		&model.Partner{},
	))
	return db
}

func testAudit(t *testing.T, db *gorm.DB) *DatabaseAccessStore {
	t.Helper()
	return NewDatabaseAccessStore(db)
}

func auditTypes(t *testing.T, store *DatabaseAccessStore) []string {
	t.Helper()
	entries, err := store.List(context.Background(), time.Time{}, time.Time{})
	require.NoError(t, err)
	types := make([]string, 0, len(entries))
	for _, e := range entries {
		types = append(types, e.Type)
	}
	return types
}

var nopLogger = zap.NewNop()
