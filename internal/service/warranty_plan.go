package service

import (
	"context"
	"errors"

	"warranty-platform/internal/apperror"
	"warranty-platform/internal/model"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// WarrantyPlanService manages the price-band plan catalog.
type WarrantyPlanService interface {
	List(ctx context.Context) ([]model.WarrantyPlan, error)
	Create(ctx context.Context, req *model.WarrantyPlanRequest, actor string) (*model.WarrantyPlan, error)
	Update(ctx context.Context, id string, req *model.WarrantyPlanRequest, actor string) (*model.WarrantyPlan, error)
	Delete(ctx context.Context, id string, actor string) error
	Lookup(ctx context.Context, devicePrice int64) ([]model.WarrantyPlan, error)
}

type warrantyPlanServiceImpl struct {
	db     *gorm.DB
	audit  AuditLog
	logger *zap.Logger
}

// NewWarrantyPlanService creates the plan catalog service.
func NewWarrantyPlanService(db *gorm.DB, audit AuditLog, logger *zap.Logger) WarrantyPlanService {
	return &warrantyPlanServiceImpl{db: db, audit: audit, logger: logger}
}

// List returns every plan in insertion order.
func (s *warrantyPlanServiceImpl) List(ctx context.Context) ([]model.WarrantyPlan, error) {
	plans := []model.WarrantyPlan{}
	if err := s.db.WithContext(ctx).Order("created_at ASC").Find(&plans).Error; err != nil {
		return nil, apperror.Internal("list warranty plans", err)
	}
	return plans, nil
}

// validatePlanRequest requires every field and a strictly increasing band.
func validatePlanRequest(op string, req *model.WarrantyPlanRequest) error {
	if req == nil || req.Range == nil || req.Range.Start == nil || req.Range.End == nil {
		return apperror.Validation(op, "range start and end are required")
	}
	if req.ExtendedWarranty1Year == nil || req.ExtendedWarranty2Year == nil || req.ScreenProtection1Year == nil {
		return apperror.Validation(op, "all three plan prices are required")
	}
	if *req.Range.Start >= *req.Range.End {
		return apperror.Validation(op, "range start must be less than range end")
	}
	if *req.Range.Start < 0 {
		return apperror.Validation(op, "range start must not be negative")
	}
	if !req.ExtendedWarranty1Year.IsPositive() || !req.ExtendedWarranty2Year.IsPositive() || !req.ScreenProtection1Year.IsPositive() {
		return apperror.Validation(op, "plan prices must be positive")
	}
	return nil
}

func applyPlanRequest(plan *model.WarrantyPlan, req *model.WarrantyPlanRequest) {
	plan.RangeStart = *req.Range.Start
	plan.RangeEnd = *req.Range.End
	plan.ExtendedWarranty1Year = *req.ExtendedWarranty1Year
	plan.ExtendedWarranty2Year = *req.ExtendedWarranty2Year
	plan.ScreenProtection1Year = *req.ScreenProtection1Year
	plan.Range = model.FormatPriceRange(plan.RangeStart, plan.RangeEnd)
}

func (s *warrantyPlanServiceImpl) Create(ctx context.Context, req *model.WarrantyPlanRequest, actor string) (*model.WarrantyPlan, error) {
	const op = "create warranty plan"
	if err := validatePlanRequest(op, req); err != nil {
		return nil, err
	}

	plan := &model.WarrantyPlan{}
	applyPlanRequest(plan, req)

	if err := s.db.WithContext(ctx).Create(plan).Error; err != nil {
		return nil, apperror.Internal(op, err)
	}

	s.logger.Info("warranty plan created", zap.String("plan_id", plan.ID), zap.String("range", plan.Range))
	recordAudit(ctx, s.audit, s.logger, model.AuditEntry{
		Type:      "plan_create",
		After:     plan,
		ChangedBy: actor,
	})
	return plan, nil
}

func (s *warrantyPlanServiceImpl) findPlan(ctx context.Context, op, id string) (*model.WarrantyPlan, error) {
	var plan model.WarrantyPlan
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&plan).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound(op, "warranty plan", id)
		}
		return nil, apperror.Internal(op, err)
	}
	return &plan, nil
}

// Update replaces the band and all three prices.
func (s *warrantyPlanServiceImpl) Update(ctx context.Context, id string, req *model.WarrantyPlanRequest, actor string) (*model.WarrantyPlan, error) {
	const op = "update warranty plan"
	if err := validatePlanRequest(op, req); err != nil {
		return nil, err
	}

	plan, err := s.findPlan(ctx, op, id)
	if err != nil {
		return nil, err
	}
	before := *plan

	applyPlanRequest(plan, req)
	if err := s.db.WithContext(ctx).Save(plan).Error; err != nil {
		return nil, apperror.Internal(op, err)
	}

	recordAudit(ctx, s.audit, s.logger, model.AuditEntry{
		Type:      "plan_update",
		Before:    before,
		After:     plan,
		ChangedBy: actor,
	})
	return plan, nil
}

func (s *warrantyPlanServiceImpl) Delete(ctx context.Context, id string, actor string) error {
	const op = "delete warranty plan"

	plan, err := s.findPlan(ctx, op, id)
	if err != nil {
		return err
	}

	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&model.WarrantyPlan{})
	if result.Error != nil {
		return apperror.Internal(op, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound(op, "warranty plan", id)
	}

	s.logger.Info("warranty plan deleted", zap.String("plan_id", id))
	recordAudit(ctx, s.audit, s.logger, model.AuditEntry{
		Type:      "plan_delete",
		Before:    plan,
		ChangedBy: actor,
	})
	return nil
}

// Lookup returns the plans whose band covers devicePrice. Bands may overlap,
// so several plans can match; no match is not an error.
func (s *warrantyPlanServiceImpl) Lookup(ctx context.Context, devicePrice int64) ([]model.WarrantyPlan, error) {
	if devicePrice < 0 {
		return nil, apperror.Validation("lookup warranty plans", "device price must not be negative")
	}

	plans := []model.WarrantyPlan{}
	err := s.db.WithContext(ctx).
		Where("range_start <= ? AND range_end >= ?", devicePrice, devicePrice).
		Order("range_start ASC").
		Find(&plans).Error
	if err != nil {
		return nil, apperror.Internal("lookup warranty plans", err)
	}
	return plans, nil
}
