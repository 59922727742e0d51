// Package infra contains infrastructure adapters for the arbitrage context.
package infra

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fd1az/p2p-arbitrage/business/arbitrage/app"
	"github.com/fd1az/p2p-arbitrage/business/arbitrage/domain"
)

// ConsoleReporter implements app.Reporter for one-shot CLI output.
type ConsoleReporter struct {
	out      io.Writer
	json     bool
	extended bool
}

var _ app.Reporter = (*ConsoleReporter)(nil)

// ConsoleOption configures a ConsoleReporter.
type ConsoleOption func(*ConsoleReporter)

// WithOutput sets the destination writer. Defaults to stdout.
func WithOutput(w io.Writer) ConsoleOption {
	return func(r *ConsoleReporter) {
		r.out = w
	}
}

// WithJSON prints the outcome as indented JSON instead of text.
func WithJSON(enabled bool) ConsoleOption {
	return func(r *ConsoleReporter) {
		r.json = enabled
	}
}

// WithExtendedErrors prints the upstream details of a failure.
func WithExtendedErrors(enabled bool) ConsoleOption {
	return func(r *ConsoleReporter) {
		r.extended = enabled
	}
}

// NewConsoleReporter creates a new ConsoleReporter.
func NewConsoleReporter(opts ...ConsoleOption) *ConsoleReporter {
	r := &ConsoleReporter{out: os.Stdout}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Report writes the outcome of a calculation.
func (r *ConsoleReporter) Report(ctx context.Context, req domain.Request, outcome domain.Outcome) error {
	if r.json {
		enc := json.NewEncoder(r.out)
		enc.SetIndent("", "  ")
		return enc.Encode(outcome)
	}

	line := strings.Repeat("=", 80)
	sep := strings.Repeat("-", 80)

	fmt.Fprintln(r.out, line)
	fmt.Fprintf(r.out, "P2P ARBITRAGE  %s %s -> %s -> %s\n",
		req.BuyAmount.StringFixed(2), req.BuyCurrency, req.Asset, req.SellCurrency)
	fmt.Fprintln(r.out, line)

	if outcome.Failed() {
		text := outcome.Error.CompactText
		if r.extended {
			text = outcome.Error.ExtendedText
		}
		fmt.Fprintf(r.out, "ERROR  %s\n", text)
		fmt.Fprintln(r.out, line)
		return nil
	}

	res := outcome.Result
	fmt.Fprintln(r.out, "BUY")
	fmt.Fprintf(r.out, "  Price:          %s %s/%s\n", res.BuyPrice.StringFixed(2), res.BuyCurrency, res.Asset)
	fmt.Fprintf(r.out, "  Bought:         %s %s\n", res.BoughtAssetAmount.StringFixed(2), res.Asset)
	fmt.Fprintf(r.out, "  Advertiser:     %s (%s)\n", res.BuyAdvertiserName, res.BuyAdvertiserID)
	fmt.Fprintln(r.out, sep)
	fmt.Fprintln(r.out, "SELL")
	fmt.Fprintf(r.out, "  Price:          %s %s/%s\n", res.SellPrice.StringFixed(2), res.SellCurrency, res.Asset)
	fmt.Fprintf(r.out, "  Sold for:       %s %s\n", res.SoldCurrencyAmount.StringFixed(2), res.SellCurrency)
	fmt.Fprintf(r.out, "  Advertiser:     %s (%s)\n", res.SellAdvertiserName, res.SellAdvertiserID)
	fmt.Fprintln(r.out, sep)
	fmt.Fprintln(r.out, "EXCHANGE")
	fmt.Fprintf(r.out, "  Rate:           %s %s/%s\n", res.FiatRate.StringFixed(2), res.SellCurrency, res.BuyCurrency)
	fmt.Fprintf(r.out, "  Direct total:   %s %s\n", res.FiatTotalAmount.StringFixed(2), res.SellCurrency)
	fmt.Fprintln(r.out, sep)
	fmt.Fprintf(r.out, "PROFIT            %s %s\n", res.Profit.StringFixed(2), res.SellCurrency)
	fmt.Fprintln(r.out, line)
	for _, s := range res.Summary {
		fmt.Fprintln(r.out, s)
	}

	return nil
}
