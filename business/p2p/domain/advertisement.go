// Package domain contains the P2P order book model and the advertisement
// selection policies.
package domain

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/fd1az/p2p-arbitrage/internal/apperror"
)

// Side is the trade direction from the searcher's point of view.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Valid reports whether s is BUY or SELL.
func (s Side) Valid() bool {
	return s == SideBuy || s == SideSell
}

func (s Side) String() string {
	return string(s)
}

// Advertisement is one P2P order book listing. Quantities are in units of
// the asset, Price is fiat per unit of asset.
type Advertisement struct {
	Side                   Side            `json:"side"`
	Price                  decimal.Decimal `json:"price"`
	MinTransactionQuantity decimal.Decimal `json:"minTransactionQuantity"`
	MaxTransactionQuantity decimal.Decimal `json:"maxTransactionQuantity"`
	AvailableQuantity      decimal.Decimal `json:"availableQuantity"`
	AdvertiserID           string          `json:"advertiserId"`
	AdvertiserName         string          `json:"advertiserName"`
}

// Accepts reports whether quantity lies strictly inside the advertisement's
// transaction window. A quantity equal to either bound is rejected.
func (a Advertisement) Accepts(quantity decimal.Decimal) bool {
	return a.MinTransactionQuantity.LessThan(quantity) && quantity.LessThan(a.MaxTransactionQuantity)
}

// SearchQuery filters an order book search.
type SearchQuery struct {
	Side          Side
	Amount        decimal.Decimal
	PaymentMethod string
	Currency      string
	Asset         string
}

// Validate checks the query before it is sent upstream.
func (q SearchQuery) Validate() error {
	switch {
	case !q.Side.Valid():
		return apperror.Validation(apperror.CodeInvalidInput, "side must be BUY or SELL")
	case !q.Amount.IsPositive():
		return apperror.Validation(apperror.CodeInvalidInput, "amount must be positive")
	case strings.TrimSpace(q.PaymentMethod) == "":
		return apperror.Validation(apperror.CodeRequiredField, "payment method")
	case strings.TrimSpace(q.Currency) == "":
		return apperror.Validation(apperror.CodeRequiredField, "currency")
	case strings.TrimSpace(q.Asset) == "":
		return apperror.Validation(apperror.CodeRequiredField, "asset")
	}
	return nil
}
