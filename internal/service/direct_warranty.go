package service

import (
	"context"
	"strings"

	"warranty-platform/internal/apperror"
	"warranty-platform/internal/model"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DirectWarrantyService stores landing-page warranty purchases.
type DirectWarrantyService interface {
	Create(ctx context.Context, req *model.DirectWarrantyRequest) (*model.DirectWarranty, error)
	ListAll(ctx context.Context) ([]model.DirectWarranty, error)
	ListPage(ctx context.Context, paging Paging) (*PagedResult[model.DirectWarranty], error)
	SearchByPhone(ctx context.Context, phone string) ([]model.DirectWarranty, error)
}

type directWarrantyServiceImpl struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewDirectWarrantyService creates the direct warranty service.
func NewDirectWarrantyService(db *gorm.DB, logger *zap.Logger) DirectWarrantyService {
	return &directWarrantyServiceImpl{db: db, logger: logger}
}

// Create stores a purchase snapshot. Only required-field presence is
// checked; the snapshot is not reconciled against the catalog.
func (s *directWarrantyServiceImpl) Create(ctx context.Context, req *model.DirectWarrantyRequest) (*model.DirectWarranty, error) {
	const op = "create direct warranty"

	var missing []string
	if strings.TrimSpace(req.PaymentOrderID) == "" {
		missing = append(missing, "paymentOrderId")
	}
	if strings.TrimSpace(req.DeviceDetails.DeviceName) == "" {
		missing = append(missing, "deviceDetails.deviceName")
	}
	if strings.TrimSpace(req.CustomerDetails.CustomerName) == "" {
		missing = append(missing, "customerDetails.customerName")
	}
	if strings.TrimSpace(req.CustomerDetails.CustomerPhone) == "" {
		missing = append(missing, "customerDetails.customerPhone")
	}
	if strings.TrimSpace(req.PlanDetails.PlanType) == "" {
		missing = append(missing, "planDetails.planType")
	}
	if len(missing) > 0 {
		return nil, apperror.Validation(op, "missing required fields: "+strings.Join(missing, ", "))
	}

	record := &model.DirectWarranty{
		PaymentOrderID:  req.PaymentOrderID,
		DeviceDetails:   req.DeviceDetails,
		CustomerDetails: req.CustomerDetails,
		PlanDetails:     req.PlanDetails,
	}
	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		return nil, apperror.Internal(op, err)
	}

	s.logger.Info("direct warranty recorded",
		zap.String("direct_warranty_id", record.ID),
		zap.String("payment_order_id", record.PaymentOrderID),
		zap.String("plan_type", record.PlanDetails.PlanType))
	return record, nil
}

func (s *directWarrantyServiceImpl) ListAll(ctx context.Context) ([]model.DirectWarranty, error) {
	records := []model.DirectWarranty{}
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&records).Error; err != nil {
		return nil, apperror.Internal("list direct warranties", err)
	}
	return records, nil
}

func (s *directWarrantyServiceImpl) ListPage(ctx context.Context, paging Paging) (*PagedResult[model.DirectWarranty], error) {
	query := s.db.WithContext(ctx).Model(&model.DirectWarranty{}).Order("created_at DESC")
	page, err := findPage[model.DirectWarranty](query, paging)
	if err != nil {
		return nil, apperror.Internal("list direct warranties", err)
	}
	return page, nil
}

// SearchByPhone returns purchases whose customer phone matches exactly. An
// empty result is not an error.
func (s *directWarrantyServiceImpl) SearchByPhone(ctx context.Context, phone string) ([]model.DirectWarranty, error) {
	const op = "search direct warranties"
	if strings.TrimSpace(phone) == "" {
		return nil, apperror.Validation(op, "phone is required")
	}

	records := []model.DirectWarranty{}
	err := s.db.WithContext(ctx).
		Where("customer_customer_phone = ?", phone).
		Order("created_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, apperror.Internal(op, err)
	}
	return records, nil
}
