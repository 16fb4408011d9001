package models

import (
	"github.com/shopspring/decimal"
)

// Balance is derived from the seller's transferred tickets; it is never
// persisted. Total is always Available + Pending.
type Balance struct {
	Available decimal.Decimal `json:"available"`
	Pending   decimal.Decimal `json:"pending"`
	Total     decimal.Decimal `json:"total"`
}

func ZeroBalance() Balance {
	return Balance{
		Available: decimal.Zero,
		Pending:   decimal.Zero,
		Total:     decimal.Zero,
	}
}
