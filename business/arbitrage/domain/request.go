// Package domain contains the core domain types for the arbitrage context.
package domain

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/fd1az/p2p-arbitrage/internal/apperror"
)

// Payment methods used when a request leaves them empty.
const (
	DefaultPaymentMethodBuy  = "Wise"
	DefaultPaymentMethodSell = "BankTransfer"
)

// Bounds on BuyAmount. The exponent is checked before any arithmetic, since
// rescaling a value like 1e999999999 allocates a 10^N coefficient.
const (
	MaxAmountScale = 8
	maxAmountExp   = 12
)

// MaxBuyAmount is the largest accepted BuyAmount.
var MaxBuyAmount = decimal.New(1, maxAmountExp)

// Request is one arbitrage calculation: spend BuyAmount of BuyCurrency on
// Asset, then sell the asset for SellCurrency.
type Request struct {
	Asset             string          `json:"asset"`
	BuyAmount         decimal.Decimal `json:"buyAmount"`
	BuyCurrency       string          `json:"buyCurrency"`
	SellCurrency      string          `json:"sellCurrency"`
	PaymentMethodBuy  string          `json:"paymentMethodBuy,omitempty"`
	PaymentMethodSell string          `json:"paymentMethodSell,omitempty"`
}

// WithDefaults returns a copy with codes trimmed and upper-cased and empty
// payment methods replaced by the defaults.
func (r Request) WithDefaults() Request {
	r.Asset = strings.ToUpper(strings.TrimSpace(r.Asset))
	r.BuyCurrency = strings.ToUpper(strings.TrimSpace(r.BuyCurrency))
	r.SellCurrency = strings.ToUpper(strings.TrimSpace(r.SellCurrency))
	r.PaymentMethodBuy = strings.TrimSpace(r.PaymentMethodBuy)
	r.PaymentMethodSell = strings.TrimSpace(r.PaymentMethodSell)

	if r.PaymentMethodBuy == "" {
		r.PaymentMethodBuy = DefaultPaymentMethodBuy
	}
	if r.PaymentMethodSell == "" {
		r.PaymentMethodSell = DefaultPaymentMethodSell
	}
	return r
}

// Validate checks that every code is present and the amount is positive and
// within MaxBuyAmount with at most MaxAmountScale decimal places.
func (r Request) Validate() error {
	switch {
	case strings.TrimSpace(r.Asset) == "":
		return apperror.Validation(apperror.CodeRequiredField, "asset")
	case strings.TrimSpace(r.BuyCurrency) == "":
		return apperror.Validation(apperror.CodeRequiredField, "buyCurrency")
	case strings.TrimSpace(r.SellCurrency) == "":
		return apperror.Validation(apperror.CodeRequiredField, "sellCurrency")
	case !r.BuyAmount.IsPositive():
		return apperror.Validation(apperror.CodeInvalidInput, "buyAmount must be a positive number")
	case r.BuyAmount.Exponent() < -MaxAmountScale:
		return apperror.Validation(apperror.CodeInvalidInput, "buyAmount has too many decimal places")
	case r.BuyAmount.Exponent() > maxAmountExp, r.BuyAmount.GreaterThan(MaxBuyAmount):
		return apperror.Validation(apperror.CodeInvalidInput, "buyAmount must not exceed "+MaxBuyAmount.String())
	case strings.TrimSpace(r.PaymentMethodBuy) == "":
		return apperror.Validation(apperror.CodeRequiredField, "paymentMethodBuy")
	case strings.TrimSpace(r.PaymentMethodSell) == "":
		return apperror.Validation(apperror.CodeRequiredField, "paymentMethodSell")
	}
	return nil
}
