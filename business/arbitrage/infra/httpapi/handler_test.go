package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fd1az/p2p-arbitrage/business/arbitrage/domain"
	"github.com/fd1az/p2p-arbitrage/internal/logger"
)

type serviceFunc func(ctx context.Context, req domain.Request) domain.Outcome

func (f serviceFunc) Calculate(ctx context.Context, req domain.Request) domain.Outcome {
	return f(ctx, req)
}

var testDefaults = Defaults{
	Asset:             "USDT",
	BuyCurrency:       "GBP",
	SellCurrency:      "PKR",
	Amount:            decimal.NewFromInt(150),
	PaymentMethodBuy:  "Wise",
	PaymentMethodSell: "BankTransfer",
}

func okResult() *domain.Result {
	res := &domain.Result{
		Asset:              "USDT",
		BuyCurrency:        "GBP",
		SellCurrency:       "PKR",
		BuyAmount:          decimal.NewFromInt(150),
		BuyPrice:           decimal.RequireFromString("1.05"),
		BuyAdvertiserID:    "b1",
		BuyAdvertiserName:  "LondonDesk",
		BoughtAssetAmount:  decimal.RequireFromString("142.8571428571428571"),
		SellPrice:          decimal.NewFromInt(352),
		SellAdvertiserID:   "s1",
		SellAdvertiserName: "KarachiOTC",
		SoldCurrencyAmount: decimal.RequireFromString("50285.71"),
		FiatRate:           decimal.NewFromInt(350),
		FiatTotalAmount:    decimal.NewFromInt(52500),
		Profit:             decimal.RequireFromString("-2214.29"),
	}
	res.Summarize()
	return res
}

func serve(t *testing.T, h *Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	mux := http.NewServeMux()
	h.Register(mux)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestGetResults_UsesQueryAndDefaults(t *testing.T) {
	var got domain.Request
	svc := serviceFunc(func(ctx context.Context, req domain.Request) domain.Outcome {
		got = req
		return domain.Outcome{Result: okResult()}
	})

	rec := serve(t, NewHandler(svc, testDefaults, false, logger.NewDiscard()),
		"/get-results?buyAmount=150&sellCurrency=pkr")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "USDT", got.Asset)
	assert.Equal(t, "GBP", got.BuyCurrency)
	assert.Equal(t, "PKR", got.SellCurrency)
	assert.Equal(t, "Wise", got.PaymentMethodBuy)
	assert.True(t, got.BuyAmount.Equal(decimal.NewFromInt(150)))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "1.05", body["buyPrice"])
	assert.Equal(t, "142.86", body["boughtUSDT"])
	assert.Equal(t, "b1", body["buyAdvId"])
	assert.Equal(t, "KarachiOTC", body["sellAdvertiser"])
	assert.Equal(t, "52500", body["fiatTotalAmount"])
	assert.Equal(t, "-2214.29", body["profit"])
	assert.NotContains(t, body, "error")
}

func TestCalculate_PipelineFailure(t *testing.T) {
	failed := domain.Outcome{Error: &domain.ErrorRecord{
		Code:        "NO_ADVERTISEMENT_FOUND",
		Message:     "No eligible advertisement found",
		CompactText: "NO_ADVERTISEMENT_FOUND: No eligible advertisement found",
		HasError:    true,
	}}
	svc := serviceFunc(func(context.Context, domain.Request) domain.Outcome { return failed })

	tests := []struct {
		name        string
		errorStatus bool
		wantStatus  int
	}{
		{"rendered as 200 by default", false, http.StatusOK},
		{"mapped when error status is enabled", true, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, NewHandler(svc, testDefaults, tt.errorStatus, logger.NewDiscard()), "/api/v1/arbitrage")

			assert.Equal(t, tt.wantStatus, rec.Code)

			var out domain.Outcome
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
			require.NotNil(t, out.Error)
			assert.Nil(t, out.Result)
			assert.Equal(t, "NO_ADVERTISEMENT_FOUND", out.Error.Code)
		})
	}
}

func TestHandler_InvalidInput(t *testing.T) {
	called := false
	svc := serviceFunc(func(context.Context, domain.Request) domain.Outcome {
		called = true
		return domain.Outcome{Result: okResult()}
	})
	h := NewHandler(svc, testDefaults, false, logger.NewDiscard())

	tests := []struct {
		name     string
		target   string
		wantCode string
	}{
		{"not a number", "/get-results?buyAmount=abc", "INVALID_INPUT"},
		{"negative amount", "/api/v1/arbitrage?buyAmount=-5", "INVALID_INPUT"},
		{"zero amount", "/api/v1/arbitrage?buyAmount=0", "INVALID_INPUT"},
		{"huge exponent", "/get-results?buyAmount=1e999999999", "INVALID_INPUT"},
		{"above maximum", "/api/v1/arbitrage?buyAmount=1000000000001", "INVALID_INPUT"},
		{"tiny exponent", "/api/v1/arbitrage?buyAmount=1e-999999999", "INVALID_INPUT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, h, tt.target)

			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var out domain.Outcome
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
			require.NotNil(t, out.Error)
			assert.Equal(t, tt.wantCode, out.Error.Code)
		})
	}
	assert.False(t, called, "service must not run for invalid input")
}

func TestHandler_MethodNotAllowed(t *testing.T) {
	h := NewHandler(serviceFunc(func(context.Context, domain.Request) domain.Outcome {
		return domain.Outcome{}
	}), testDefaults, false, logger.NewDiscard())

	mux := http.NewServeMux()
	h.Register(mux)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/get-results", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
