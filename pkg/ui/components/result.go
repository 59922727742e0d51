// Package components provides reusable TUI components.
package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// ResultData is a successful calculation, already rounded by the domain.
type ResultData struct {
	Asset          string
	BuyCurrency    string
	SellCurrency   string
	BuyAmount      decimal.Decimal
	BuyPrice       decimal.Decimal
	BuyAdvertiser  string
	Bought         decimal.Decimal
	SellPrice      decimal.Decimal
	SellAdvertiser string
	Sold           decimal.Decimal
	Rate           decimal.Decimal
	FiatTotal      decimal.Decimal
	Profit         decimal.Decimal
	Duration       time.Duration
}

// ErrorData is a failed calculation.
type ErrorData struct {
	Code     string
	Compact  string
	Extended string
}

// ResultComponent renders the last calculation.
type ResultComponent struct {
	result   *ResultData
	err      *ErrorData
	extended bool
}

// NewResultComponent creates an empty result panel.
func NewResultComponent() *ResultComponent {
	return &ResultComponent{}
}

// SetResult shows a successful calculation.
func (r *ResultComponent) SetResult(data ResultData) {
	r.result = &data
	r.err = nil
}

// SetError shows a failed calculation.
func (r *ResultComponent) SetError(data ErrorData) {
	r.err = &data
	r.result = nil
}

// ToggleExtended switches between compact and extended error text.
func (r *ResultComponent) ToggleExtended() {
	r.extended = !r.extended
}

// Extended reports whether extended error text is shown.
func (r *ResultComponent) Extended() bool {
	return r.extended
}

// View renders the result panel.
func (r *ResultComponent) View() string {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	positiveStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	negativeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))

	switch {
	case r.err != nil:
		text := r.err.Compact
		if r.extended {
			text = r.err.Extended
		}
		return headerStyle.Render("RESULT") + "\n\n" +
			negativeStyle.Render("  ✗ "+text) + "\n"

	case r.result == nil:
		return headerStyle.Render("RESULT") + "\n\n" +
			dimStyle.Render("  Enter an amount and press enter to calculate...") + "\n"
	}

	res := r.result
	var sb strings.Builder

	sb.WriteString(headerStyle.Render(fmt.Sprintf("RESULT (%s %s → %s → %s)",
		res.BuyAmount.StringFixed(2), res.BuyCurrency, res.Asset, res.SellCurrency)))
	sb.WriteString("\n\n")

	row := func(label, value string) {
		sb.WriteString(fmt.Sprintf("  %-16s %s\n", label, value))
	}

	row("Buy price", fmt.Sprintf("%s %s/%s", res.BuyPrice.StringFixed(2), res.BuyCurrency, res.Asset))
	row("Bought", fmt.Sprintf("%s %s", res.Bought.StringFixed(2), res.Asset))
	row("Buy from", dimStyle.Render(res.BuyAdvertiser))
	sb.WriteString(dimStyle.Render("  "+strings.Repeat("─", 48)) + "\n")
	row("Sell price", fmt.Sprintf("%s %s/%s", res.SellPrice.StringFixed(2), res.SellCurrency, res.Asset))
	row("Sold for", fmt.Sprintf("%s %s", res.Sold.StringFixed(2), res.SellCurrency))
	row("Sell to", dimStyle.Render(res.SellAdvertiser))
	sb.WriteString(dimStyle.Render("  "+strings.Repeat("─", 48)) + "\n")
	row("Fiat rate", fmt.Sprintf("%s %s/%s", res.Rate.StringFixed(2), res.SellCurrency, res.BuyCurrency))
	row("Direct total", fmt.Sprintf("%s %s", res.FiatTotal.StringFixed(2), res.SellCurrency))

	profitStyle := positiveStyle
	if !res.Profit.IsPositive() {
		profitStyle = negativeStyle
	}
	sb.WriteString("\n")
	row("Profit", profitStyle.Bold(true).Render(fmt.Sprintf("%s %s", res.Profit.StringFixed(2), res.SellCurrency)))

	if res.Duration > 0 {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n  computed in %s", res.Duration.Round(time.Millisecond))))
		sb.WriteString("\n")
	}

	return sb.String()
}
