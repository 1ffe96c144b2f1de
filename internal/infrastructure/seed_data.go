package infrastructure

import (
	"context"
	"fmt"

	"warranty-platform/internal/apperror"
	"warranty-platform/internal/model"
	"warranty-platform/internal/service"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SeedDataManager loads the data a fresh installation needs.
type SeedDataManager struct {
	db            *gorm.DB
	users         service.UserService
	accessStore   service.AccessRuleStore
	plans         service.WarrantyPlanService
	coveragePlans service.CoveragePlanService
	logger        *zap.Logger
}

// NewSeedDataManager creates a new seed data manager
func NewSeedDataManager(
	db *gorm.DB,
	users service.UserService,
	accessStore service.AccessRuleStore,
	plans service.WarrantyPlanService,
	coveragePlans service.CoveragePlanService,
	logger *zap.Logger,
) *SeedDataManager {
	return &SeedDataManager{
		db:            db,
		users:         users,
		accessStore:   accessStore,
		plans:         plans,
		coveragePlans: coveragePlans,
		logger:        logger,
	}
}

// SeedAll is safe to run repeatedly; each step skips data already present.
func (s *SeedDataManager) SeedAll(ctx context.Context, adminUsername, adminPassword string) error {
	if err := s.setupAccessRules(ctx); err != nil {
		return fmt.Errorf("failed to setup access rules: %w", err)
	}
	if err := s.setupAdmin(ctx, adminUsername, adminPassword); err != nil {
		return fmt.Errorf("failed to setup admin user: %w", err)
	}
	if err := s.setupWarrantyPlans(ctx); err != nil {
		return fmt.Errorf("failed to setup warranty plans: %w", err)
	}
	if err := s.setupCoveragePlans(ctx); err != nil {
		return fmt.Errorf("failed to setup coverage plans: %w", err)
	}
	return nil
}

func (s *SeedDataManager) setupAccessRules(ctx context.Context) error {
	rules := service.DefaultAccessRules()
	for _, rule := range rules {
		if err := s.accessStore.SaveRule(ctx, rule); err != nil {
			return err
		}
	}
	s.logger.Info("access rules seeded", zap.Int("rules", len(rules)))
	return nil
}

func (s *SeedDataManager) setupAdmin(ctx context.Context, username, password string) error {
	_, err := s.users.CreateUser(ctx, &service.CreateUserRequest{
		Username: username,
		Password: password,
		Role:     model.RoleAdmin,
	})
	if apperror.Is(err, apperror.KindConflict) {
		s.logger.Info("admin user already exists, skipping creation", zap.String("username", username))
		return nil
	}
	if err != nil {
		return err
	}
	s.logger.Info("admin user created", zap.String("username", username))
	return nil
}

func (s *SeedDataManager) setupWarrantyPlans(ctx context.Context) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.WarrantyPlan{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		s.logger.Info("warranty plans already exist, skipping creation")
		return nil
	}

	bands := []struct {
		start, end    int64
		ew1, ew2, sp1 int64
	}{
		{0, 10000, 499, 899, 299},
		{10001, 20000, 999, 1699, 499},
		{20001, 40000, 1499, 2499, 699},
		{40001, 80000, 2499, 3999, 999},
		{80001, 200000, 3999, 6499, 1499},
	}

	for _, b := range bands {
		start, end := b.start, b.end
		ew1, ew2, sp1 := decimal.NewFromInt(b.ew1), decimal.NewFromInt(b.ew2), decimal.NewFromInt(b.sp1)
		_, err := s.plans.Create(ctx, &model.WarrantyPlanRequest{
			Range:                 &model.PriceRange{Start: &start, End: &end},
			ExtendedWarranty1Year: &ew1,
			ExtendedWarranty2Year: &ew2,
			ScreenProtection1Year: &sp1,
		}, "system")
		if err != nil {
			return err
		}
	}

	s.logger.Info("warranty plans seeded", zap.Int("plans", len(bands)))
	return nil
}

func (s *SeedDataManager) setupCoveragePlans(ctx context.Context) error {
	existing, err := s.coveragePlans.List(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		s.logger.Info("coverage plans already exist, skipping creation")
		return nil
	}

	plans := []model.CoveragePlanRequest{
		{Name: "Basic", DurationMonths: 6, Price: decimal.NewFromInt(499)},
		{Name: "Standard", DurationMonths: 12, Price: decimal.NewFromInt(899)},
		{Name: "Premium", DurationMonths: 24, Price: decimal.NewFromInt(1599)},
	}
	for i := range plans {
		if _, err := s.coveragePlans.Create(ctx, &plans[i], "system"); err != nil {
			return err
		}
	}

	s.logger.Info("coverage plans seeded", zap.Int("plans", len(plans)))
	return nil
}
