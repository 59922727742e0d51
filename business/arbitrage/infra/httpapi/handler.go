// Package httpapi exposes the arbitrage calculator over HTTP.
package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/fd1az/p2p-arbitrage/business/arbitrage/app"
	"github.com/fd1az/p2p-arbitrage/business/arbitrage/domain"
	"github.com/fd1az/p2p-arbitrage/internal/apperror"
	"github.com/fd1az/p2p-arbitrage/internal/logger"
)

// Defaults fills query parameters the caller leaves out.
type Defaults struct {
	Asset             string
	BuyCurrency       string
	SellCurrency      string
	Amount            decimal.Decimal
	PaymentMethodBuy  string
	PaymentMethodSell string
}

// Handler serves the calculation endpoints.
type Handler struct {
	svc         app.Service
	defaults    Defaults
	errorStatus bool
	log         logger.LoggerInterface
}

// NewHandler creates a Handler. When errorStatus is false, pipeline failures
// are reported with 200 and an error record in the body.
func NewHandler(svc app.Service, defaults Defaults, errorStatus bool, log logger.LoggerInterface) *Handler {
	return &Handler{
		svc:         svc,
		defaults:    defaults,
		errorStatus: errorStatus,
		log:         log,
	}
}

// Register mounts the routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /get-results", h.GetResults)
	mux.HandleFunc("GET /api/v1/arbitrage", h.Calculate)
}

// Calculate returns the Outcome as JSON.
// GET /api/v1/arbitrage?asset=USDT&buyAmount=150&buyCurrency=GBP&sellCurrency=PKR
func (h *Handler) Calculate(w http.ResponseWriter, r *http.Request) {
	req, err := h.parseRequest(r)
	if err != nil {
		h.writeInvalid(w, r, err)
		return
	}

	outcome := h.svc.Calculate(r.Context(), req)
	writeJSON(w, h.status(outcome), outcome)
}

// GetResults returns the flat result document consumed by the web page.
// GET /get-results?asset=USDT&buyAmount=150&buyCurrency=GBP&sellCurrency=PKR
func (h *Handler) GetResults(w http.ResponseWriter, r *http.Request) {
	req, err := h.parseRequest(r)
	if err != nil {
		h.writeInvalid(w, r, err)
		return
	}

	outcome := h.svc.Calculate(r.Context(), req)
	writeJSON(w, h.status(outcome), newResultsResponse(outcome))
}

func (h *Handler) parseRequest(r *http.Request) (domain.Request, error) {
	q := r.URL.Query()

	req := domain.Request{
		Asset:             firstNonEmpty(q.Get("asset"), h.defaults.Asset),
		BuyCurrency:       firstNonEmpty(q.Get("buyCurrency"), h.defaults.BuyCurrency),
		SellCurrency:      firstNonEmpty(q.Get("sellCurrency"), h.defaults.SellCurrency),
		PaymentMethodBuy:  firstNonEmpty(q.Get("paymentMethodBuy"), h.defaults.PaymentMethodBuy),
		PaymentMethodSell: firstNonEmpty(q.Get("paymentMethodSell"), h.defaults.PaymentMethodSell),
		BuyAmount:         h.defaults.Amount,
	}

	if v := strings.TrimSpace(q.Get("buyAmount")); v != "" {
		amount, err := decimal.NewFromString(v)
		if err != nil {
			return domain.Request{}, apperror.Validation(apperror.CodeInvalidInput, "buyAmount must be a decimal number")
		}
		req.BuyAmount = amount
	}

	req = req.WithDefaults()
	if err := req.Validate(); err != nil {
		return domain.Request{}, err
	}
	return req, nil
}

func (h *Handler) status(outcome domain.Outcome) int {
	if !outcome.Failed() || !h.errorStatus {
		return http.StatusOK
	}
	return apperror.StatusFor(apperror.Code(outcome.Error.Code))
}

func (h *Handler) writeInvalid(w http.ResponseWriter, r *http.Request, err error) {
	rec := app.NormalizeError(err)
	h.log.Debug(r.Context(), "rejected calculation request", "error", rec.CompactText, "query", r.URL.RawQuery)
	writeJSON(w, apperror.StatusFor(apperror.Code(rec.Code)), domain.Outcome{Error: rec})
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// writeJSON marshals v as JSON and writes it to the response with the given
// HTTP status code. If marshaling fails, it falls back to a plain-text 500.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(data)
}
