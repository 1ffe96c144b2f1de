package service

import (
	"context"
	"errors"

	"warranty-platform/internal/apperror"
	"warranty-platform/internal/model"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// InspectionFilters narrows inspection listings.
type InspectionFilters struct {
	PhoneCheckerID string
	ShopOwnerID    string
}

// InspectionService files and reads device inspection reports.
type InspectionService interface {
	Create(ctx context.Context, req *model.InspectionRequest, checkerID string) (*model.InspectionReport, error)
	Get(ctx context.Context, id string) (*model.InspectionReport, error)
	List(ctx context.Context, filters InspectionFilters) ([]model.InspectionReport, error)
}

type inspectionServiceImpl struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewInspectionService creates the inspection report service.
func NewInspectionService(db *gorm.DB, logger *zap.Logger) InspectionService {
	return &inspectionServiceImpl{db: db, logger: logger}
}

func (s *inspectionServiceImpl) Create(ctx context.Context, req *model.InspectionRequest, checkerID string) (*model.InspectionReport, error) {
	const op = "create inspection"
	if checkerID == "" {
		return nil, apperror.Validation(op, "phone checker is required")
	}

	report := &model.InspectionReport{
		PhoneCheckerID: checkerID,
		ShopOwnerID:    req.ShopOwnerID,
		ShopName:       req.ShopName,
		DeviceModel:    req.DeviceModel,
		IMEI:           req.IMEI,
		Condition:      req.Condition,
		Notes:          req.Notes,
	}
	if err := s.db.WithContext(ctx).Create(report).Error; err != nil {
		return nil, apperror.Internal(op, err)
	}

	s.logger.Info("inspection filed",
		zap.String("inspection_id", report.ID),
		zap.String("phone_checker_id", checkerID),
		zap.String("device_model", report.DeviceModel))
	return report, nil
}

func (s *inspectionServiceImpl) Get(ctx context.Context, id string) (*model.InspectionReport, error) {
	var report model.InspectionReport
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&report).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("get inspection", "inspection report", id)
		}
		return nil, apperror.Internal("get inspection", err)
	}
	return &report, nil
}

func (s *inspectionServiceImpl) List(ctx context.Context, filters InspectionFilters) ([]model.InspectionReport, error) {
	query := s.db.WithContext(ctx).Model(&model.InspectionReport{})
	if filters.PhoneCheckerID != "" {
		query = query.Where("phone_checker_id = ?", filters.PhoneCheckerID)
	}
	if filters.ShopOwnerID != "" {
		query = query.Where("shop_owner_id = ?", filters.ShopOwnerID)
	}

	reports := []model.InspectionReport{}
	if err := query.Order("created_at DESC").Find(&reports).Error; err != nil {
		return nil, apperror.Internal("list inspections", err)
	}
	return reports, nil
}
