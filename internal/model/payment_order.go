package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentPurpose names what a gateway order pays for.
type PaymentPurpose string

const (
	PaymentPurposeFine           PaymentPurpose = "fine"
	PaymentPurposeDirectWarranty PaymentPurpose = "direct_warranty"
)

// PaymentOrderStatus tracks the orchestrator's view of a gateway order.
type PaymentOrderStatus string

const (
	PaymentOrderCreated PaymentOrderStatus = "Created"
	PaymentOrderPaid    PaymentOrderStatus = "Paid"
	PaymentOrderFailed  PaymentOrderStatus = "Failed"
)

// PaymentOrder records an order created with the external gateway.
type PaymentOrder struct {
	OrderID     string             `json:"orderId" gorm:"type:varchar(64);primaryKey"`
	SessionID   string             `json:"paymentSessionId" gorm:"type:varchar(255)"`
	Purpose     PaymentPurpose     `json:"purpose" gorm:"type:varchar(30);not null;index"`
	ReferenceID string             `json:"referenceId" gorm:"type:varchar(36);index"`
	Amount      decimal.Decimal    `json:"amount" gorm:"type:numeric(12,2);not null"`
	Currency    string             `json:"currency" gorm:"type:varchar(8);not null"`
	Status      PaymentOrderStatus `json:"status" gorm:"type:varchar(10);not null;index"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

func (PaymentOrder) TableName() string {
	return "payment_orders"
}

// PaymentSessionResponse is returned to the client to launch checkout.
type PaymentSessionResponse struct {
	PaymentSessionID string `json:"payment_session_id"`
	OrderID          string `json:"order_id"`
}

// LandingOrderRequest starts a landing-page warranty purchase.
type LandingOrderRequest struct {
	Amount          decimal.Decimal `json:"amount"`
	CustomerDetails CustomerDetails `json:"customerDetails"`
}
