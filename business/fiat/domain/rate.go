// Package domain holds the fiat conversion model.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExchangeRate is the spot conversion From -> To observed at ObservedAt.
// Rate is always positive.
type ExchangeRate struct {
	From       string          `json:"from"`
	To         string          `json:"to"`
	Rate       decimal.Decimal `json:"rate"`
	ObservedAt time.Time       `json:"observedAt"`
}

// Convert applies the rate to amount without rounding.
func (r ExchangeRate) Convert(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(r.Rate)
}

// Pair returns "FROM/TO".
func (r ExchangeRate) Pair() string {
	return r.From + "/" + r.To
}
