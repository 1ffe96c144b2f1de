package model

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatPriceRange(t *testing.T) {
	assert.Equal(t, "₹10000 – ₹20000", FormatPriceRange(10000, 20000))
	assert.Equal(t, "₹0 – ₹999", FormatPriceRange(0, 999))
}

func TestWarrantyIsBillable(t *testing.T) {
	plan := &CoveragePlan{ID: "p"}
	assert.True(t, (&Warranty{Customer: WarrantyCustomer{CustomerName: "Asha"}, CoveragePlan: plan}).IsBillable())
	assert.False(t, (&Warranty{CoveragePlan: plan}).IsBillable())
	assert.False(t, (&Warranty{Customer: WarrantyCustomer{CustomerName: "   "}, CoveragePlan: plan}).IsBillable())
	assert.False(t, (&Warranty{Customer: WarrantyCustomer{CustomerName: "Asha"}}).IsBillable())
}

func TestMoneyMarshalsAsNumber(t *testing.T) {
	raw, err := json.Marshal(Fine{Amount: decimal.NewFromInt(500), Status: FineStatusUnpaid})
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"amount":500`)
	assert.Contains(t, string(raw), `"status":"Unpaid"`)
}
