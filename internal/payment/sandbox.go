package payment

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// SandboxGateway is an in-process gateway for local development and tests.
// Orders stay ACTIVE until Settle is called.
type SandboxGateway struct {
	mu     sync.Mutex
	orders map[string]*Order
	// FailCreate makes CreateOrder return an error.
	FailCreate bool
	// FailGet makes GetOrder return an error.
	FailGet bool
}

// NewSandboxGateway returns an empty sandbox gateway.
func NewSandboxGateway() *SandboxGateway {
	return &SandboxGateway{orders: make(map[string]*Order)}
}

func (g *SandboxGateway) CreateOrder(_ context.Context, req OrderRequest) (*Order, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.FailCreate {
		return nil, fmt.Errorf("%w: sandbox configured to fail", ErrGateway)
	}
	if _, exists := g.orders[req.OrderID]; exists {
		return nil, fmt.Errorf("%w: order %s already exists", ErrGateway, req.OrderID)
	}

	order := &Order{
		OrderID:          req.OrderID,
		PaymentSessionID: "session_" + uuid.NewString(),
		Status:           StatusActive,
		Amount:           req.Amount,
	}
	g.orders[req.OrderID] = order

	copied := *order
	return &copied, nil
}

func (g *SandboxGateway) GetOrder(_ context.Context, orderID string) (*Order, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.FailGet {
		return nil, fmt.Errorf("%w: sandbox configured to fail", ErrGateway)
	}
	order, ok := g.orders[orderID]
	if !ok {
		return nil, ErrOrderNotFound
	}
	copied := *order
	return &copied, nil
}

// Settle completes checkout for an order, as the hosted page would.
func (g *SandboxGateway) Settle(orderID string, paid bool) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	order, ok := g.orders[orderID]
	if !ok {
		return ErrOrderNotFound
	}
	if paid {
		order.Status = StatusPaid
	} else {
		order.Status = StatusExpired
	}
	return nil
}
