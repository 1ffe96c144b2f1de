package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestGateway(t *testing.T, handler http.HandlerFunc) *CashfreeGateway {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewCashfreeGateway(CashfreeConfig{
		BaseURL:      server.URL + "/pg/",
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		APIVersion:   "2023-08-01",
		ReturnURL:    "https://example.test/return",
	}, server.Client(), zap.NewNop())
}

func TestCashfreeGateway_CreateOrder(t *testing.T) {
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/pg/orders", r.URL.Path)
		assert.Equal(t, "client-id", r.Header.Get("x-client-id"))
		assert.Equal(t, "client-secret", r.Header.Get("x-client-secret"))
		assert.Equal(t, "2023-08-01", r.Header.Get("x-api-version"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "fine_1", body["order_id"])
		assert.Equal(t, 500.0, body["order_amount"])
		assert.Equal(t, "INR", body["order_currency"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"order_id":"fine_1","payment_session_id":"sess_abc","order_status":"ACTIVE","order_amount":500}`))
	})

	order, err := gw.CreateOrder(context.Background(), OrderRequest{
		OrderID:  "fine_1",
		Amount:   decimal.NewFromInt(500),
		Currency: "INR",
		Customer: Customer{ID: "checker-1", Phone: "9876543210"},
	})

	require.NoError(t, err)
	assert.Equal(t, "fine_1", order.OrderID)
	assert.Equal(t, "sess_abc", order.PaymentSessionID)
	assert.False(t, order.Paid())
}

func TestCashfreeGateway_GetOrderPaid(t *testing.T) {
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/pg/orders/fine_1", r.URL.Path)
		_, _ = w.Write([]byte(`{"order_id":"fine_1","order_status":"PAID","order_amount":"500.00"}`))
	})

	order, err := gw.GetOrder(context.Background(), "fine_1")
	require.NoError(t, err)
	assert.True(t, order.Paid())
	assert.True(t, order.Amount.Equal(decimal.NewFromInt(500)))
}

func TestCashfreeGateway_Errors(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})
		_, err := gw.GetOrder(context.Background(), "missing")
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})

	t.Run("rejected", func(t *testing.T) {
		gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"code":"order_amount_invalid","message":"amount too low","type":"invalid_request_error"}`))
		})
		_, err := gw.CreateOrder(context.Background(), OrderRequest{OrderID: "x", Amount: decimal.Zero, Currency: "INR"})
		assert.ErrorIs(t, err, ErrGateway)
		assert.Contains(t, err.Error(), "amount too low")
	})
}

func TestSandboxGateway(t *testing.T) {
	gw := NewSandboxGateway()
	ctx := context.Background()

	order, err := gw.CreateOrder(ctx, OrderRequest{OrderID: "o1", Amount: decimal.NewFromInt(10), Currency: "INR"})
	require.NoError(t, err)
	assert.NotEmpty(t, order.PaymentSessionID)

	_, err = gw.CreateOrder(ctx, OrderRequest{OrderID: "o1"})
	assert.ErrorIs(t, err, ErrGateway)

	require.NoError(t, gw.Settle("o1", true))
	got, err := gw.GetOrder(ctx, "o1")
	require.NoError(t, err)
	assert.True(t, got.Paid())

	assert.ErrorIs(t, gw.Settle("nope", true), ErrOrderNotFound)
}
