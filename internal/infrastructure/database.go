package infrastructure

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"warranty-platform/internal/config"
	"warranty-platform/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ConnectDatabase opens the configured database using GORM.
func ConnectDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger: logger.New(
			log.New(os.Stdout, "\r\n", log.LstdFlags),
			logger.Config{
				SlowThreshold:             time.Second,
				LogLevel:                  gormLogLevel(cfg.LogLevel),
				IgnoreRecordNotFoundError: true,
				Colorful:                  false,
			},
		),
		TranslateError: true,
	}

	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres", "":
		dsn := fmt.Sprintf(
			"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host,
			cfg.Port,
			cfg.User,
			cfg.Password,
			cfg.Database,
			cfg.SSLMode,
		)
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if cfg.Driver == "sqlite" {
		// SQLite serialises writers; one connection avoids "database is locked".
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
	}
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}

func gormLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return logger.Info
	case "warn":
		return logger.Warn
	case "error":
		return logger.Error
	default:
		return logger.Silent
	}
}

// MigrateAllSchemas performs all database migrations in the correct order
func MigrateAllSchemas(db *gorm.DB) error {
	// 1. Accounts and access policy
	if err := db.AutoMigrate(&model.User{}, &model.AccessRuleDB{}, &model.AuditEntryDB{}); err != nil {
		return fmt.Errorf("failed to migrate account tables: %w", err)
	}

	// 2. Catalogs
	if err := db.AutoMigrate(&model.WarrantyPlan{}, &model.CoveragePlan{}); err != nil {
		return fmt.Errorf("failed to migrate plan tables: %w", err)
	}

	// 3. Inspections and issued warranties
	if err := db.AutoMigrate(&model.InspectionReport{}, &model.Warranty{}, &model.DirectWarranty{}); err != nil {
		return fmt.Errorf("failed to migrate warranty tables: %w", err)
	}

	// 4. Fines, payments and partners
	if err := db.AutoMigrate(&model.Fine{}, &model.PaymentOrder{}, &model.Partner{}); err != nil {
		return fmt.Errorf("failed to migrate fine and payment tables: %w", err)
	}

	if err := createAdditionalIndexes(db); err != nil {
		return fmt.Errorf("failed to create additional indexes: %w", err)
	}

	return nil
}

// createAdditionalIndexes creates composite indexes used by dashboard queries
func createAdditionalIndexes(db *gorm.DB) error {
	statements := []string{
		`CREATE INDEX IF NOT EXISTS idx_fines_checker_status
		ON fines(phone_checker_id, status)`,
		`CREATE INDEX IF NOT EXISTS idx_payment_orders_purpose_reference
		ON payment_orders(purpose, reference_id)`,
		`CREATE INDEX IF NOT EXISTS idx_warranty_plans_range
		ON warranty_plans(range_start, range_end)`,
		`CREATE INDEX IF NOT EXISTS idx_access_rules_role_resource
		ON access_rules(role, resource, action)`,
	}

	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}
