package service

import (
	"context"
	"errors"
	"strings"

	"warranty-platform/internal/apperror"
	"warranty-platform/internal/model"
	"warranty-platform/internal/payment"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// LandingPaymentService opens and verifies checkout sessions for warranties
// bought directly on the landing page.
type LandingPaymentService interface {
	CreateOrder(ctx context.Context, req *model.LandingOrderRequest) (*model.PaymentSessionResponse, error)
	VerifyOrder(ctx context.Context, orderID string) (*model.PaymentOrder, error)
}

type landingPaymentServiceImpl struct {
	db       *gorm.DB
	gateway  payment.Gateway
	logger   *zap.Logger
	currency string
}

// NewLandingPaymentService creates the landing-page payment service.
func NewLandingPaymentService(db *gorm.DB, gateway payment.Gateway, logger *zap.Logger, currency string) LandingPaymentService {
	return &landingPaymentServiceImpl{db: db, gateway: gateway, logger: logger, currency: currency}
}

func (s *landingPaymentServiceImpl) CreateOrder(ctx context.Context, req *model.LandingOrderRequest) (*model.PaymentSessionResponse, error) {
	const op = "create landing order"
	if !req.Amount.IsPositive() {
		return nil, apperror.Validation(op, "amount must be positive")
	}
	if strings.TrimSpace(req.CustomerDetails.CustomerPhone) == "" {
		return nil, apperror.Validation(op, "customer phone is required")
	}

	orderID := "dw_" + uuid.NewString()
	order, err := s.gateway.CreateOrder(ctx, payment.OrderRequest{
		OrderID:  orderID,
		Amount:   req.Amount,
		Currency: s.currency,
		Customer: payment.Customer{
			ID:    "cust_" + req.CustomerDetails.CustomerPhone,
			Name:  req.CustomerDetails.CustomerName,
			Email: req.CustomerDetails.CustomerEmail,
			Phone: req.CustomerDetails.CustomerPhone,
		},
		Note: "Direct warranty purchase",
	})
	if err != nil {
		s.logger.Warn("landing payment order creation failed", zap.Error(err))
		return nil, apperror.Upstream(op, err)
	}

	record := &model.PaymentOrder{
		OrderID:   order.OrderID,
		SessionID: order.PaymentSessionID,
		Purpose:   model.PaymentPurposeDirectWarranty,
		Amount:    req.Amount,
		Currency:  s.currency,
		Status:    model.PaymentOrderCreated,
	}
	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		return nil, apperror.Internal(op, err)
	}

	s.logger.Info("landing payment order created", zap.String("order_id", order.OrderID))
	return &model.PaymentSessionResponse{
		PaymentSessionID: order.PaymentSessionID,
		OrderID:          order.OrderID,
	}, nil
}

// VerifyOrder asks the gateway for the order's state and records it.
func (s *landingPaymentServiceImpl) VerifyOrder(ctx context.Context, orderID string) (*model.PaymentOrder, error) {
	const op = "verify landing order"

	var record model.PaymentOrder
	err := s.db.WithContext(ctx).
		Where("order_id = ? AND purpose = ?", orderID, model.PaymentPurposeDirectWarranty).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound(op, "payment order", orderID)
		}
		return nil, apperror.Internal(op, err)
	}
	if record.Status != model.PaymentOrderCreated {
		return &record, nil
	}

	gwOrder, err := s.gateway.GetOrder(ctx, orderID)
	if err != nil {
		return nil, apperror.Upstream(op, err)
	}

	switch gwOrder.Status {
	case payment.StatusPaid:
		record.Status = model.PaymentOrderPaid
	case payment.StatusExpired:
		record.Status = model.PaymentOrderFailed
	default:
		return &record, nil
	}

	err = s.db.WithContext(ctx).Model(&model.PaymentOrder{}).
		Where("order_id = ? AND status = ?", orderID, model.PaymentOrderCreated).
		Update("status", record.Status).Error
	if err != nil {
		return nil, apperror.Internal(op, err)
	}

	s.logger.Info("landing payment order settled",
		zap.String("order_id", orderID),
		zap.String("status", string(record.Status)))
	return &record, nil
}
