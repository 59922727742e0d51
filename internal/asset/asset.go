// Package asset holds display and precision metadata for the crypto assets
// traded on P2P markets and the fiat currencies they are priced in.
package asset

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Kind distinguishes crypto assets from fiat currencies.
type Kind uint8

const (
	KindCrypto Kind = iota + 1
	KindFiat
)

func (k Kind) String() string {
	switch k {
	case KindCrypto:
		return "crypto"
	case KindFiat:
		return "fiat"
	default:
		return "unknown"
	}
}

// Asset represents the metadata of a crypto or fiat asset.
// The symbol is its identity; Binance P2P and the rate API both key on it.
type Asset struct {
	symbol   string
	name     string
	decimals int32
	kind     Kind
}

// New creates a new Asset. The symbol is upper-cased.
func New(symbol, name string, decimals int32, kind Kind) *Asset {
	if symbol == "" {
		panic("asset: empty symbol")
	}
	if decimals < 0 || decimals > 18 {
		panic("asset: suspicious decimals")
	}

	return &Asset{
		symbol:   strings.ToUpper(symbol),
		name:     name,
		decimals: decimals,
		kind:     kind,
	}
}

// Symbol returns the ticker or ISO 4217 code (e.g., "USDT", "GBP").
func (a *Asset) Symbol() string {
	return a.symbol
}

// Name returns the human-readable name, falling back to the symbol.
func (a *Asset) Name() string {
	if a.name == "" {
		return a.symbol
	}
	return a.name
}

// Decimals returns the display precision.
func (a *Asset) Decimals() int32 {
	return a.decimals
}

func (a *Asset) Kind() Kind {
	return a.kind
}

func (a *Asset) IsFiat() bool {
	return a.kind == KindFiat
}

// Format renders v with the asset's precision and symbol, e.g. "52500.00 PKR".
func (a *Asset) Format(v decimal.Decimal) string {
	return v.StringFixed(a.decimals) + " " + a.symbol
}

// String returns a human-readable representation.
func (a *Asset) String() string {
	return a.symbol
}
