package model

import "github.com/shopspring/decimal"

// Amounts travel as JSON numbers, matching what the dashboards send.
// MarshalJSONWithoutQuotes is a package-level switch in decimal, so importing
// this package changes how every decimal.Decimal in the process marshals.
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}
