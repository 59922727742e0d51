// Package exchangeratehost implements the RateProvider port against the
// exchangerate.host convert endpoint.
package exchangeratehost

import (
	"bytes"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// ConvertResponse is the body of GET /convert.
type ConvertResponse struct {
	Success *bool           `json:"success"`
	Query   *ConvertQuery   `json:"query"`
	Info    *ConvertInfo    `json:"info"`
	Date    string          `json:"date"`
	Result  json.RawMessage `json:"result"`
	Error   *APIError       `json:"error"`
}

type ConvertQuery struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type ConvertInfo struct {
	Timestamp int64            `json:"timestamp"`
	Rate      *decimal.Decimal `json:"rate"`
	Quote     *decimal.Decimal `json:"quote"`
}

// APIError is the embedded error object. Code is numeric on some plans and a
// string on others.
type APIError struct {
	Code flexString `json:"code"`
	Type string     `json:"type"`
	Info string     `json:"info"`
}

// Message prefers the long description over the error type.
func (e *APIError) Message() string {
	if e.Info != "" {
		return e.Info
	}
	return e.Type
}

// rate returns the first usable rate in the payload.
func (r *ConvertResponse) rate() (decimal.Decimal, bool) {
	if r.Info == nil {
		return decimal.Zero, false
	}
	for _, v := range []*decimal.Decimal{r.Info.Rate, r.Info.Quote} {
		if v != nil && v.IsPositive() {
			return *v, true
		}
	}
	return decimal.Zero, false
}

// flexString accepts a JSON string or number.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	*f = flexString(b)
	return nil
}
