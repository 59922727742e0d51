package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Result is a completed buy-then-sell calculation. Currency-facing amounts
// are already rounded: FiatTotalAmount to whole units, SoldCurrencyAmount
// and Profit to two decimals. BoughtAssetAmount keeps full precision.
type Result struct {
	Asset        string          `json:"asset"`
	BuyCurrency  string          `json:"buyCurrency"`
	SellCurrency string          `json:"sellCurrency"`
	BuyAmount    decimal.Decimal `json:"buyAmount"`

	BuyPrice          decimal.Decimal `json:"buyPrice"`
	BuyAdvertiserID   string          `json:"buyAdvertiserId"`
	BuyAdvertiserName string          `json:"buyAdvertiserName"`
	BoughtAssetAmount decimal.Decimal `json:"boughtAssetAmount"`

	SellPrice          decimal.Decimal `json:"sellPrice"`
	SellAdvertiserID   string          `json:"sellAdvertiserId"`
	SellAdvertiserName string          `json:"sellAdvertiserName"`
	SoldCurrencyAmount decimal.Decimal `json:"soldCurrencyAmount"`

	FiatRate        decimal.Decimal `json:"fiatRate"`
	FiatTotalAmount decimal.Decimal `json:"fiatTotalAmount"`
	Profit          decimal.Decimal `json:"profit"`

	Summary []string `json:"summary"`
}

// IsProfitable reports whether selling yields more than the direct conversion.
func (r *Result) IsProfitable() bool {
	return r.Profit.IsPositive()
}

// Summarize fills Summary with the exchange, buy, sell and profit lines.
func (r *Result) Summarize() {
	r.Summary = []string{
		fmt.Sprintf("Exchange: %s %s = %s %s at %s %s/%s",
			r.BuyAmount.StringFixed(2), r.BuyCurrency,
			r.FiatTotalAmount.StringFixed(2), r.SellCurrency,
			r.FiatRate.StringFixed(2), r.SellCurrency, r.BuyCurrency),
		fmt.Sprintf("Buy: %s %s for %s %s at %s %s/%s from %s",
			r.BoughtAssetAmount.StringFixed(2), r.Asset,
			r.BuyAmount.StringFixed(2), r.BuyCurrency,
			r.BuyPrice.StringFixed(2), r.BuyCurrency, r.Asset,
			r.BuyAdvertiser()),
		fmt.Sprintf("Sell: %s %s for %s %s at %s %s/%s to %s",
			r.BoughtAssetAmount.StringFixed(2), r.Asset,
			r.SoldCurrencyAmount.StringFixed(2), r.SellCurrency,
			r.SellPrice.StringFixed(2), r.SellCurrency, r.Asset,
			r.SellAdvertiser()),
		fmt.Sprintf("Profit: %s %s", r.Profit.StringFixed(2), r.SellCurrency),
	}
}

// BuyAdvertiser labels the buy-side advertiser as "name (id)".
func (r *Result) BuyAdvertiser() string {
	return advertiser(r.BuyAdvertiserName, r.BuyAdvertiserID)
}

// SellAdvertiser labels the sell-side advertiser as "name (id)".
func (r *Result) SellAdvertiser() string {
	return advertiser(r.SellAdvertiserName, r.SellAdvertiserID)
}

// advertiser falls back to whichever of name and id is present.
func advertiser(name, id string) string {
	switch {
	case name == "":
		return id
	case id == "":
		return name
	default:
		return fmt.Sprintf("%s (%s)", name, id)
	}
}
