package ui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"

	"github.com/fd1az/p2p-arbitrage/business/arbitrage/domain"
	"github.com/fd1az/p2p-arbitrage/internal/asset"
)

type serviceFunc func(ctx context.Context, req domain.Request) domain.Outcome

func (f serviceFunc) Calculate(ctx context.Context, req domain.Request) domain.Outcome {
	return f(ctx, req)
}

func defaults() domain.Request {
	return domain.Request{
		Asset:             "USDT",
		BuyAmount:         decimal.NewFromInt(150),
		BuyCurrency:       "GBP",
		SellCurrency:      "PKR",
		PaymentMethodBuy:  "Wise",
		PaymentMethodSell: "BankTransfer",
	}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return model, cmd
}

func TestModel_WelcomeSkipsOnKey(t *testing.T) {
	m := New(context.Background(), serviceFunc(nil), defaults())
	if m.phase != PhaseWelcome {
		t.Fatalf("phase = %s, want welcome", m.phase)
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	if m.phase != PhaseForm {
		t.Errorf("phase = %s, want form", m.phase)
	}
	if !strings.Contains(m.View(), "CALCULATE") {
		t.Error("form not rendered")
	}
}

func TestModel_BuildRequestFromForm(t *testing.T) {
	m := New(context.Background(), serviceFunc(nil), defaults())
	m.inputs[fieldAsset].SetValue(" usdc ")
	m.inputs[fieldAmount].SetValue("200.5")

	req, err := m.buildRequest()
	if err != nil {
		t.Fatalf("buildRequest() error = %v", err)
	}
	if req.Asset != "USDC" || req.BuyCurrency != "GBP" || req.SellCurrency != "PKR" {
		t.Errorf("unexpected request %+v", req)
	}
	if !req.BuyAmount.Equal(decimal.RequireFromString("200.5")) {
		t.Errorf("BuyAmount = %s", req.BuyAmount)
	}
	if req.PaymentMethodBuy != "Wise" || req.PaymentMethodSell != "BankTransfer" {
		t.Errorf("payment methods = %s/%s", req.PaymentMethodBuy, req.PaymentMethodSell)
	}
}

func TestModel_InvalidAmountShowsFormError(t *testing.T) {
	called := false
	svc := serviceFunc(func(context.Context, domain.Request) domain.Outcome {
		called = true
		return domain.Outcome{}
	})

	m := New(context.Background(), svc, defaults())
	m.phase = PhaseForm
	m.inputs[fieldAmount].SetValue("abc")

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if cmd != nil {
		t.Error("expected no command for invalid input")
	}
	if m.computing {
		t.Error("model should not be computing")
	}
	if !strings.HasPrefix(m.formErr, "INVALID_INPUT:") {
		t.Errorf("formErr = %q", m.formErr)
	}
	if called {
		t.Error("service must not be called")
	}
}

func TestModel_CalculateAndRecord(t *testing.T) {
	var got domain.Request
	svc := serviceFunc(func(ctx context.Context, req domain.Request) domain.Outcome {
		got = req
		return domain.Outcome{Result: &domain.Result{
			Asset:        req.Asset,
			BuyCurrency:  req.BuyCurrency,
			SellCurrency: req.SellCurrency,
			BuyAmount:    req.BuyAmount,
			Profit:       decimal.RequireFromString("12.50"),

			BuyAdvertiserName: "LondonDesk",
			BuyAdvertiserID:   "b1",
			SellAdvertiserName: "KarachiOTC",
		}}
	})

	m := New(context.Background(), svc, defaults())
	m.phase = PhaseForm

	req, err := m.buildRequest()
	if err != nil {
		t.Fatal(err)
	}
	msg, ok := m.calculate(req)().(CalculatedMsg)
	if !ok {
		t.Fatal("calculate did not return CalculatedMsg")
	}
	if got.Asset != "USDT" {
		t.Errorf("service got %+v", got)
	}

	m.computing = true
	m, _ = update(t, m, msg)

	if m.computing {
		t.Error("computing should be cleared")
	}
	if m.history.Len() != 1 {
		t.Errorf("history len = %d, want 1", m.history.Len())
	}
	if s := m.stats.Stats(); s.Calculations != 1 || s.Profitable != 1 {
		t.Errorf("stats = %+v", s)
	}
	view := m.View()
	if !strings.Contains(view, "12.50 PKR") {
		t.Error("profit not rendered")
	}
	if !strings.Contains(view, "LondonDesk (b1)") || !strings.Contains(view, "KarachiOTC") || strings.Contains(view, "KarachiOTC ()") {
		t.Error("advertisers not rendered with their labels")
	}
}

func TestModel_FailedOutcome(t *testing.T) {
	m := New(context.Background(), serviceFunc(nil), defaults())
	m.phase = PhaseForm

	rec := &domain.ErrorRecord{
		Code:         "UPSTREAM_UNAVAILABLE",
		CompactText:  "UPSTREAM_UNAVAILABLE: Upstream service unavailable",
		ExtendedText: "UPSTREAM_UNAVAILABLE: Upstream service unavailable (upstream TIMEOUT: deadline exceeded)",
		HasError:     true,
	}
	m, _ = update(t, m, CalculatedMsg{Request: defaults(), Outcome: domain.Outcome{Error: rec}})

	if s := m.stats.Stats(); s.Errors != 1 {
		t.Errorf("stats = %+v", s)
	}
	if strings.Contains(m.View(), "TIMEOUT") {
		t.Error("extended text shown before toggle")
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlE})
	if !strings.Contains(m.View(), "upstream TIMEOUT") {
		t.Error("extended text not shown after toggle")
	}
}

func TestModel_FocusCycles(t *testing.T) {
	m := New(context.Background(), serviceFunc(nil), defaults())
	m.phase = PhaseForm

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	if m.focus != fieldSellCurrency {
		t.Errorf("focus = %d, want %d", m.focus, fieldSellCurrency)
	}
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.focus != fieldAsset {
		t.Errorf("focus = %d, want %d", m.focus, fieldAsset)
	}
}

func TestModel_SuggestionsFromRegistry(t *testing.T) {
	reg := asset.DefaultRegistry()
	m := New(context.Background(), serviceFunc(nil), defaults()).WithSuggestions(
		reg.Symbols(asset.KindCrypto),
		reg.Symbols(asset.KindFiat),
	)

	if !m.inputs[fieldAsset].ShowSuggestions {
		t.Fatal("asset field should show suggestions")
	}
	if m.inputs[fieldAmount].ShowSuggestions {
		t.Error("amount field takes no suggestions")
	}

	got := m.inputs[fieldSellCurrency].AvailableSuggestions()
	found := false
	for _, s := range got {
		if s == "PKR" {
			found = true
		}
	}
	if !found {
		t.Errorf("PKR missing from currency suggestions %v", got)
	}
}
