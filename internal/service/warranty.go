package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"warranty-platform/internal/apperror"
	"warranty-platform/internal/model"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AddMonths adds calendar months to t. When the target month is shorter
// than t's day, the result is clamped to that month's last day
// (Jan 31 + 1 month = Feb 28 or 29).
func AddMonths(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	firstOfTarget := time.Date(year, month+time.Month(months), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	lastDay := firstOfTarget.AddDate(0, 1, -1).Day()
	if day > lastDay {
		day = lastDay
	}
	return firstOfTarget.AddDate(0, 0, day-1)
}

// ExpiryDate is the issue date plus the plan duration.
func ExpiryDate(issueDate time.Time, durationMonths int) time.Time {
	return AddMonths(issueDate, durationMonths)
}

// BillableWarranties keeps only records complete enough for invoice and
// messaging exports. It filters a view; nothing is removed from the store.
func BillableWarranties(warranties []model.Warranty) []model.Warranty {
	billable := make([]model.Warranty, 0, len(warranties))
	for _, w := range warranties {
		if w.IsBillable() {
			billable = append(billable, w)
		}
	}
	return billable
}

// CoveragePlanService manages duration-based plans.
type CoveragePlanService interface {
	List(ctx context.Context) ([]model.CoveragePlan, error)
	Create(ctx context.Context, req *model.CoveragePlanRequest, actor string) (*model.CoveragePlan, error)
}

type coveragePlanServiceImpl struct {
	db     *gorm.DB
	audit  AuditLog
	logger *zap.Logger
}

// NewCoveragePlanService creates the coverage plan service.
func NewCoveragePlanService(db *gorm.DB, audit AuditLog, logger *zap.Logger) CoveragePlanService {
	return &coveragePlanServiceImpl{db: db, audit: audit, logger: logger}
}

func (s *coveragePlanServiceImpl) List(ctx context.Context) ([]model.CoveragePlan, error) {
	plans := []model.CoveragePlan{}
	if err := s.db.WithContext(ctx).Order("duration_months ASC, name ASC").Find(&plans).Error; err != nil {
		return nil, apperror.Internal("list coverage plans", err)
	}
	return plans, nil
}

func (s *coveragePlanServiceImpl) Create(ctx context.Context, req *model.CoveragePlanRequest, actor string) (*model.CoveragePlan, error) {
	const op = "create coverage plan"
	switch {
	case strings.TrimSpace(req.Name) == "":
		return nil, apperror.Validation(op, "name is required")
	case req.DurationMonths < 1:
		return nil, apperror.Validation(op, "duration must be at least one month")
	case !req.Price.IsPositive():
		return nil, apperror.Validation(op, "price must be positive")
	}

	plan := &model.CoveragePlan{
		Name:           strings.TrimSpace(req.Name),
		DurationMonths: req.DurationMonths,
		Price:          req.Price,
	}
	if err := s.db.WithContext(ctx).Create(plan).Error; err != nil {
		return nil, apperror.Internal(op, err)
	}

	recordAudit(ctx, s.audit, s.logger, model.AuditEntry{
		Type:      "coverage_plan_create",
		After:     plan,
		ChangedBy: actor,
	})
	return plan, nil
}

// WarrantyFilters narrows warranty listings.
type WarrantyFilters struct {
	ShopOwnerID   string
	CustomerPhone string
}

// WarrantyService issues and lists inspection-linked warranties.
type WarrantyService interface {
	Issue(ctx context.Context, req *model.IssueWarrantyRequest, issuer *model.User) (*model.Warranty, error)
	Get(ctx context.Context, id string) (*model.Warranty, error)
	List(ctx context.Context, filters WarrantyFilters) ([]model.Warranty, error)
	ListBillable(ctx context.Context, filters WarrantyFilters) ([]model.Warranty, error)
}

type warrantyServiceImpl struct {
	db     *gorm.DB
	logger *zap.Logger
	now    func() time.Time
}

// NewWarrantyService creates the warranty issuance service.
func NewWarrantyService(db *gorm.DB, logger *zap.Logger) WarrantyService {
	return &warrantyServiceImpl{db: db, logger: logger, now: time.Now}
}

// Issue creates a warranty for an inspected device. The customer name may be
// left empty; such records are kept but excluded from billing views.
func (s *warrantyServiceImpl) Issue(ctx context.Context, req *model.IssueWarrantyRequest, issuer *model.User) (*model.Warranty, error) {
	const op = "issue warranty"

	if strings.TrimSpace(req.Customer.CustomerPhone) == "" {
		return nil, apperror.Validation(op, "customer phone is required")
	}

	var report model.InspectionReport
	if err := s.db.WithContext(ctx).Where("id = ?", req.InspectionReportID).First(&report).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound(op, "inspection report", req.InspectionReportID)
		}
		return nil, apperror.Internal(op, err)
	}
	if issuer != nil && issuer.Role == model.RoleShopOwner && report.ShopOwnerID != issuer.ID {
		return nil, apperror.Forbidden(op, "inspection report belongs to another shop")
	}

	var plan model.CoveragePlan
	if err := s.db.WithContext(ctx).Where("id = ?", req.CoveragePlanID).First(&plan).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound(op, "warranty plan", req.CoveragePlanID)
		}
		return nil, apperror.Internal(op, err)
	}

	issueDate := s.now()
	if req.IssueDate != nil {
		issueDate = *req.IssueDate
	}

	customer := req.Customer
	if customer.IMEI == "" {
		customer.IMEI = report.IMEI
	}

	warranty := &model.Warranty{
		Customer:           customer,
		InspectionReportID: report.ID,
		CoveragePlanID:     plan.ID,
		IssueDate:          issueDate,
	}
	if err := s.db.WithContext(ctx).Create(warranty).Error; err != nil {
		return nil, apperror.Internal(op, err)
	}

	warranty.InspectionReport = &report
	warranty.CoveragePlan = &plan
	withExpiry(warranty)

	s.logger.Info("warranty issued",
		zap.String("warranty_id", warranty.ID),
		zap.String("inspection_id", report.ID),
		zap.Int("duration_months", plan.DurationMonths))
	return warranty, nil
}

func withExpiry(w *model.Warranty) {
	if w.CoveragePlan == nil {
		w.ExpiryDate = nil
		return
	}
	expiry := ExpiryDate(w.IssueDate, w.CoveragePlan.DurationMonths)
	w.ExpiryDate = &expiry
}

func (s *warrantyServiceImpl) Get(ctx context.Context, id string) (*model.Warranty, error) {
	var warranty model.Warranty
	err := s.db.WithContext(ctx).
		Preload("InspectionReport").
		Preload("CoveragePlan").
		Where("id = ?", id).
		First(&warranty).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("get warranty", "warranty", id)
		}
		return nil, apperror.Internal("get warranty", err)
	}
	withExpiry(&warranty)
	return &warranty, nil
}

func (s *warrantyServiceImpl) List(ctx context.Context, filters WarrantyFilters) ([]model.Warranty, error) {
	query := s.db.WithContext(ctx).
		Model(&model.Warranty{}).
		Preload("InspectionReport").
		Preload("CoveragePlan")

	if filters.ShopOwnerID != "" {
		query = query.Where("inspection_report_id IN (?)",
			s.db.WithContext(ctx).Model(&model.InspectionReport{}).Select("id").Where("shop_owner_id = ?", filters.ShopOwnerID))
	}
	if filters.CustomerPhone != "" {
		query = query.Where("customer_customer_phone = ?", filters.CustomerPhone)
	}

	warranties := []model.Warranty{}
	if err := query.Order("issue_date DESC").Find(&warranties).Error; err != nil {
		return nil, apperror.Internal("list warranties", err)
	}
	for i := range warranties {
		withExpiry(&warranties[i])
	}
	return warranties, nil
}

func (s *warrantyServiceImpl) ListBillable(ctx context.Context, filters WarrantyFilters) ([]model.Warranty, error) {
	warranties, err := s.List(ctx, filters)
	if err != nil {
		return nil, err
	}
	return BillableWarranties(warranties), nil
}
