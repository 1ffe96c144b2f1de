package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CashfreeConfig configures the Cashfree PG client.
type CashfreeConfig struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	APIVersion   string
	ReturnURL    string
}

// CashfreeGateway creates and queries orders over the Cashfree PG REST API.
type CashfreeGateway struct {
	config CashfreeConfig
	client *http.Client
	logger *zap.Logger
}

// NewCashfreeGateway returns a gateway client. A nil client uses a default
// with a 15 second timeout.
func NewCashfreeGateway(config CashfreeConfig, client *http.Client, logger *zap.Logger) *CashfreeGateway {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &CashfreeGateway{
		config: config,
		client: client,
		logger: logger,
	}
}

type cashfreeCustomer struct {
	CustomerID    string `json:"customer_id"`
	CustomerName  string `json:"customer_name,omitempty"`
	CustomerEmail string `json:"customer_email,omitempty"`
	CustomerPhone string `json:"customer_phone"`
}

type cashfreeOrderMeta struct {
	ReturnURL string `json:"return_url,omitempty"`
}

type cashfreeCreateOrder struct {
	OrderID         string             `json:"order_id"`
	OrderAmount     float64            `json:"order_amount"`
	OrderCurrency   string             `json:"order_currency"`
	CustomerDetails cashfreeCustomer   `json:"customer_details"`
	OrderMeta       *cashfreeOrderMeta `json:"order_meta,omitempty"`
	OrderNote       string             `json:"order_note,omitempty"`
}

type cashfreeOrder struct {
	OrderID          string          `json:"order_id"`
	PaymentSessionID string          `json:"payment_session_id"`
	OrderStatus      string          `json:"order_status"`
	OrderAmount      decimal.Decimal `json:"order_amount"`
}

type cashfreeError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

// CreateOrder registers an order and returns its checkout session.
func (g *CashfreeGateway) CreateOrder(ctx context.Context, req OrderRequest) (*Order, error) {
	body := cashfreeCreateOrder{
		OrderID:       req.OrderID,
		OrderAmount:   req.Amount.InexactFloat64(),
		OrderCurrency: req.Currency,
		CustomerDetails: cashfreeCustomer{
			CustomerID:    req.Customer.ID,
			CustomerName:  req.Customer.Name,
			CustomerEmail: req.Customer.Email,
			CustomerPhone: req.Customer.Phone,
		},
		OrderNote: req.Note,
	}
	if g.config.ReturnURL != "" {
		body.OrderMeta = &cashfreeOrderMeta{ReturnURL: g.config.ReturnURL}
	}

	var out cashfreeOrder
	if err := g.do(ctx, http.MethodPost, "/orders", body, &out); err != nil {
		return nil, err
	}

	g.logger.Info("payment order created",
		zap.String("order_id", out.OrderID),
		zap.String("status", out.OrderStatus))

	return out.toOrder(), nil
}

// GetOrder fetches the current state of an order.
func (g *CashfreeGateway) GetOrder(ctx context.Context, orderID string) (*Order, error) {
	var out cashfreeOrder
	if err := g.do(ctx, http.MethodGet, "/orders/"+url.PathEscape(orderID), nil, &out); err != nil {
		return nil, err
	}
	return out.toOrder(), nil
}

func (o cashfreeOrder) toOrder() *Order {
	return &Order{
		OrderID:          o.OrderID,
		PaymentSessionID: o.PaymentSessionID,
		Status:           o.OrderStatus,
		Amount:           o.OrderAmount,
	}
}

func (g *CashfreeGateway) do(ctx context.Context, method, path string, in, out interface{}) error {
	var reader io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode gateway request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(g.config.BaseURL, "/")+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build gateway request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-client-id", g.config.ClientID)
	req.Header.Set("x-client-secret", g.config.ClientSecret)
	req.Header.Set("x-api-version", g.config.APIVersion)

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrGateway, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%w: failed to read response: %v", ErrGateway, err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return ErrOrderNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr cashfreeError
		_ = json.Unmarshal(data, &apiErr)
		g.logger.Warn("payment gateway rejected request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("code", apiErr.Code),
			zap.String("message", apiErr.Message))
		return fmt.Errorf("%w: status %d: %s", ErrGateway, resp.StatusCode, apiErr.Message)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", ErrGateway, err)
	}
	return nil
}
