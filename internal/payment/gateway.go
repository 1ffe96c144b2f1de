// Package payment talks to the external payment gateway. The gateway is an
// opaque collaborator: it hands out a checkout session for an order and later
// reports whether the order was paid.
package payment

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// Order states reported by the gateway.
const (
	StatusActive  = "ACTIVE"
	StatusPaid    = "PAID"
	StatusExpired = "EXPIRED"
)

var (
	// ErrGateway wraps any failure talking to the gateway.
	ErrGateway = errors.New("payment gateway error")

	// ErrOrderNotFound is returned when the gateway does not know an order.
	ErrOrderNotFound = errors.New("payment order not found")
)

// Customer identifies the payer to the gateway.
type Customer struct {
	ID    string
	Name  string
	Email string
	Phone string
}

// OrderRequest asks the gateway for a new checkout session.
type OrderRequest struct {
	OrderID  string
	Amount   decimal.Decimal
	Currency string
	Customer Customer
	Note     string
}

// Order is the gateway's view of an order.
type Order struct {
	OrderID          string
	PaymentSessionID string
	Status           string
	Amount           decimal.Decimal
}

// Paid reports whether the gateway considers the order settled.
func (o *Order) Paid() bool {
	return o.Status == StatusPaid
}

// Gateway is implemented by payment providers.
type Gateway interface {
	CreateOrder(ctx context.Context, req OrderRequest) (*Order, error)
	GetOrder(ctx context.Context, orderID string) (*Order, error)
}
