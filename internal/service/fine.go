package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"warranty-platform/internal/apperror"
	"warranty-platform/internal/model"
	"warranty-platform/internal/payment"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// FineFilters narrows fine listings.
type FineFilters struct {
	PhoneCheckerID string
	Status         model.FineStatus
}

// FineService issues fines and settles them through the payment gateway.
type FineService interface {
	Issue(ctx context.Context, req *model.IssueFineRequest, actor string) (*model.Fine, error)
	Get(ctx context.Context, id string) (*model.Fine, error)
	List(ctx context.Context, filters FineFilters) ([]model.Fine, error)
	CreateFineOrder(ctx context.Context, fineID string, payer *model.User) (*model.PaymentSessionResponse, error)
	MarkFinePaid(ctx context.Context, fineID, orderID, status string, actor string) (*model.Fine, error)
}

type fineServiceImpl struct {
	db       *gorm.DB
	gateway  payment.Gateway
	audit    AuditLog
	logger   *zap.Logger
	currency string
	now      func() time.Time
}

// NewFineService creates the fine service.
func NewFineService(db *gorm.DB, gateway payment.Gateway, audit AuditLog, logger *zap.Logger, currency string) FineService {
	return &fineServiceImpl{
		db:       db,
		gateway:  gateway,
		audit:    audit,
		logger:   logger,
		currency: currency,
		now:      time.Now,
	}
}

func (s *fineServiceImpl) Issue(ctx context.Context, req *model.IssueFineRequest, actor string) (*model.Fine, error) {
	const op = "issue fine"
	if strings.TrimSpace(req.PhoneCheckerID) == "" {
		return nil, apperror.Validation(op, "phone checker is required")
	}
	if !req.Amount.IsPositive() {
		return nil, apperror.Validation(op, "amount must be positive")
	}
	if req.Amount.Exponent() < -2 {
		return nil, apperror.Validation(op, "amount must have at most two decimal places")
	}

	var checker model.User
	if err := s.db.WithContext(ctx).Where("id = ?", req.PhoneCheckerID).First(&checker).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound(op, "phone checker", req.PhoneCheckerID)
		}
		return nil, apperror.Internal(op, err)
	}
	if checker.Role != model.RolePhoneChecker {
		return nil, apperror.Validation(op, "fines can only be issued to phone checkers")
	}

	if req.InspectionID != "" {
		var report model.InspectionReport
		if err := s.db.WithContext(ctx).Where("id = ?", req.InspectionID).First(&report).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperror.NotFound(op, "inspection report", req.InspectionID)
			}
			return nil, apperror.Internal(op, err)
		}
	}

	fine := &model.Fine{
		PhoneCheckerID: req.PhoneCheckerID,
		InspectionID:   req.InspectionID,
		Model:          req.Model,
		Amount:         req.Amount,
		Status:         model.FineStatusUnpaid,
		Comment:        req.Comment,
	}
	if err := s.db.WithContext(ctx).Create(fine).Error; err != nil {
		return nil, apperror.Internal(op, err)
	}

	s.logger.Info("fine issued",
		zap.String("fine_id", fine.ID),
		zap.String("phone_checker_id", fine.PhoneCheckerID),
		zap.String("amount", fine.Amount.String()))
	recordAudit(ctx, s.audit, s.logger, model.AuditEntry{
		Type:      "fine_issue",
		After:     fine,
		ChangedBy: actor,
	})
	return fine, nil
}

func (s *fineServiceImpl) Get(ctx context.Context, id string) (*model.Fine, error) {
	return s.findFine(ctx, "get fine", id)
}

func (s *fineServiceImpl) findFine(ctx context.Context, op, id string) (*model.Fine, error) {
	var fine model.Fine
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&fine).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound(op, "fine", id)
		}
		return nil, apperror.Internal(op, err)
	}
	return &fine, nil
}

func (s *fineServiceImpl) List(ctx context.Context, filters FineFilters) ([]model.Fine, error) {
	query := s.db.WithContext(ctx).Model(&model.Fine{})
	if filters.PhoneCheckerID != "" {
		query = query.Where("phone_checker_id = ?", filters.PhoneCheckerID)
	}
	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}

	fines := []model.Fine{}
	if err := query.Order("created_at DESC").Find(&fines).Error; err != nil {
		return nil, apperror.Internal("list fines", err)
	}
	return fines, nil
}

// CreateFineOrder opens a gateway checkout session for the fine's amount.
// The fine itself is not modified.
func (s *fineServiceImpl) CreateFineOrder(ctx context.Context, fineID string, payer *model.User) (*model.PaymentSessionResponse, error) {
	const op = "create fine order"

	fine, err := s.findFine(ctx, op, fineID)
	if err != nil {
		return nil, err
	}
	if fine.Status == model.FineStatusPaid {
		return nil, apperror.Conflict(op, "fine is already paid")
	}
	if payer != nil && payer.Role == model.RolePhoneChecker && payer.ID != fine.PhoneCheckerID {
		return nil, apperror.Forbidden(op, "fine belongs to another phone checker")
	}

	orderID := "fine_" + uuid.NewString()
	order, err := s.gateway.CreateOrder(ctx, payment.OrderRequest{
		OrderID:  orderID,
		Amount:   fine.Amount,
		Currency: s.currency,
		Customer: s.payerDetails(ctx, fine.PhoneCheckerID),
		Note:     "Fine " + fine.ID,
	})
	if err != nil {
		s.logger.Warn("payment order creation failed", zap.String("fine_id", fine.ID), zap.Error(err))
		return nil, apperror.Upstream(op, err)
	}

	record := &model.PaymentOrder{
		OrderID:     order.OrderID,
		SessionID:   order.PaymentSessionID,
		Purpose:     model.PaymentPurposeFine,
		ReferenceID: fine.ID,
		Amount:      fine.Amount,
		Currency:    s.currency,
		Status:      model.PaymentOrderCreated,
	}
	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		return nil, apperror.Internal(op, err)
	}

	s.logger.Info("fine payment order created",
		zap.String("fine_id", fine.ID),
		zap.String("order_id", order.OrderID))

	return &model.PaymentSessionResponse{
		PaymentSessionID: order.PaymentSessionID,
		OrderID:          order.OrderID,
	}, nil
}

// payerDetails describes the fined phone checker to the gateway. A missing
// account still yields a usable customer id.
func (s *fineServiceImpl) payerDetails(ctx context.Context, checkerID string) payment.Customer {
	customer := payment.Customer{ID: checkerID}

	var user model.User
	if err := s.db.WithContext(ctx).Where("id = ?", checkerID).First(&user).Error; err != nil {
		s.logger.Debug("phone checker account not found", zap.String("phone_checker_id", checkerID), zap.Error(err))
		return customer
	}
	customer.Name = user.Username
	customer.Phone = user.Phone
	return customer
}

// MarkFinePaid records a client-reported payment outcome. The fine moves
// Unpaid -> Paid at most once, and only after the gateway confirms the order
// was paid; every failure leaves the fine Unpaid.
func (s *fineServiceImpl) MarkFinePaid(ctx context.Context, fineID, orderID, status string, actor string) (*model.Fine, error) {
	const op = "mark fine paid"

	fine, err := s.findFine(ctx, op, fineID)
	if err != nil {
		return nil, err
	}
	if fine.Status == model.FineStatusPaid {
		return nil, apperror.Conflict(op, "fine is already paid")
	}

	var order model.PaymentOrder
	if err := s.db.WithContext(ctx).Where("order_id = ?", orderID).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Validation(op, "unknown payment order: "+orderID)
		}
		return nil, apperror.Internal(op, err)
	}
	if order.Purpose != model.PaymentPurposeFine || order.ReferenceID != fine.ID {
		return nil, apperror.Validation(op, "payment order does not belong to this fine")
	}

	if !strings.EqualFold(status, string(model.FineStatusPaid)) {
		s.markOrder(ctx, orderID, model.PaymentOrderFailed)
		s.logger.Info("fine payment reported as failed",
			zap.String("fine_id", fine.ID),
			zap.String("order_id", orderID),
			zap.String("status", status))
		return nil, apperror.PaymentFailed(op, "payment failed")
	}

	gwOrder, err := s.gateway.GetOrder(ctx, orderID)
	if err != nil {
		return nil, apperror.Upstream(op, err)
	}
	if !gwOrder.Paid() {
		s.logger.Warn("payment callback not confirmed by gateway",
			zap.String("fine_id", fine.ID),
			zap.String("order_id", orderID),
			zap.String("gateway_status", gwOrder.Status))
		return nil, apperror.PaymentFailed(op, "payment not confirmed by gateway")
	}
	if !gwOrder.Amount.IsZero() && !gwOrder.Amount.Equal(fine.Amount) {
		return nil, apperror.PaymentFailed(op, "paid amount does not match fine amount")
	}

	paidAt := s.now()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.Fine{}).
			Where("id = ? AND status = ?", fine.ID, model.FineStatusUnpaid).
			Updates(map[string]interface{}{
				"status":   model.FineStatusPaid,
				"order_id": orderID,
				"paid_at":  paidAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return errFineAlreadyPaid
		}

		return tx.Model(&model.PaymentOrder{}).
			Where("order_id = ?", orderID).
			Update("status", model.PaymentOrderPaid).Error
	})
	if errors.Is(err, errFineAlreadyPaid) {
		return nil, apperror.Conflict(op, "fine is already paid")
	}
	if err != nil {
		return nil, apperror.Internal(op, err)
	}

	before := *fine
	fine.Status = model.FineStatusPaid
	fine.OrderID = &orderID
	fine.PaidAt = &paidAt

	s.logger.Info("fine paid",
		zap.String("fine_id", fine.ID),
		zap.String("order_id", orderID),
		zap.String("amount", fine.Amount.String()))
	recordAudit(ctx, s.audit, s.logger, model.AuditEntry{
		Type:      "fine_paid",
		Before:    before,
		After:     fine,
		ChangedBy: actor,
	})
	return fine, nil
}

var errFineAlreadyPaid = errors.New("fine already paid")

func (s *fineServiceImpl) markOrder(ctx context.Context, orderID string, status model.PaymentOrderStatus) {
	err := s.db.WithContext(ctx).Model(&model.PaymentOrder{}).
		Where("order_id = ? AND status = ?", orderID, model.PaymentOrderCreated).
		Update("status", status).Error
	if err != nil {
		s.logger.Warn("failed to update payment order", zap.String("order_id", orderID), zap.Error(err))
	}
}
