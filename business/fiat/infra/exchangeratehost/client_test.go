package exchangeratehost

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fd1az/p2p-arbitrage/internal/apperror"
	"github.com/fd1az/p2p-arbitrage/internal/logger"
)

func newClient(t *testing.T, url, key string) *Client {
	t.Helper()
	c, err := NewClient(Config{BaseURL: url, AccessKey: key, Timeout: 200 * time.Millisecond}, logger.NewDiscard())
	require.NoError(t, err)
	return c
}

func TestClient_GetRate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/convert", r.URL.Path)
		assert.Equal(t, "GBP", r.URL.Query().Get("from"))
		assert.Equal(t, "PKR", r.URL.Query().Get("to"))
		assert.Equal(t, "k3y", r.URL.Query().Get("access_key"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"query":{"from":"GBP","to":"PKR","amount":1},
			"info":{"timestamp":1700000000,"rate":350.25},"date":"2023-11-14","result":350.25}`))
	}))
	defer server.Close()

	rate, err := newClient(t, server.URL, "k3y").GetRate(context.Background(), "GBP", "PKR")
	require.NoError(t, err)

	assert.Equal(t, "GBP", rate.From)
	assert.Equal(t, "PKR", rate.To)
	assert.True(t, rate.Rate.Equal(decimal.RequireFromString("350.25")), "rate = %s", rate.Rate)
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), rate.ObservedAt)
}

func TestClient_GetRate_QuoteFallbackAndNoKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.False(t, r.URL.Query().Has("access_key"))
		w.Write([]byte(`{"success":true,"info":{"quote":1.27}}`))
	}))
	defer server.Close()

	c := newClient(t, server.URL, "")
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return fixed }

	rate, err := c.GetRate(context.Background(), "gbp", "usd")
	require.NoError(t, err)
	assert.Equal(t, "GBP/USD", rate.Pair())
	assert.True(t, rate.Rate.Equal(decimal.RequireFromString("1.27")))
	assert.Equal(t, fixed, rate.ObservedAt)
}

func TestClient_GetRate_NoRateData(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		wantUpstream string
		wantMessage  string
	}{
		{
			name:         "api error with numeric code",
			body:         `{"success":false,"error":{"code":101,"type":"missing_access_key","info":"You have not supplied an API Access Key."}}`,
			wantUpstream: "101",
			wantMessage:  "You have not supplied an API Access Key.",
		},
		{
			name:         "api error with string code",
			body:         `{"success":false,"error":{"code":"invalid_currency","type":"invalid_to_currency"}}`,
			wantUpstream: "invalid_currency",
			wantMessage:  "invalid_to_currency",
		},
		{name: "missing info", body: `{"success":true,"result":null}`},
		{name: "zero rate", body: `{"success":true,"info":{"rate":0}}`},
		{name: "null rate", body: `{"success":true,"info":{"rate":null}}`},
		{name: "not json", body: `<html></html>`, wantUpstream: CodeInvalidResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := newClient(t, server.URL, "").GetRate(context.Background(), "GBP", "PKR")

			var appErr *apperror.AppError
			require.True(t, errors.As(err, &appErr), "expected AppError, got %v", err)
			assert.Equal(t, apperror.CodeNoRateData, appErr.Code)
			assert.Equal(t, tt.wantUpstream, appErr.UpstreamCode)
			if tt.wantMessage != "" {
				assert.Equal(t, tt.wantMessage, appErr.UpstreamMessage)
			}
		})
	}
}

func TestClient_GetRate_Unavailable(t *testing.T) {
	t.Run("http status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		_, err := newClient(t, server.URL, "").GetRate(context.Background(), "GBP", "PKR")

		var appErr *apperror.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, apperror.CodeUpstreamUnavailable, appErr.Code)
		assert.Equal(t, "HTTP_500", appErr.UpstreamCode)
	})

	t.Run("timeout", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(time.Second)
		}))
		defer server.Close()

		_, err := newClient(t, server.URL, "").GetRate(context.Background(), "GBP", "PKR")

		var appErr *apperror.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, apperror.CodeUpstreamUnavailable, appErr.Code)
		assert.Equal(t, "TIMEOUT", appErr.UpstreamCode)
	})

	t.Run("connection refused", func(t *testing.T) {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)
		addr := ln.Addr().String()
		ln.Close()

		_, err = newClient(t, "http://"+addr, "").GetRate(context.Background(), "GBP", "PKR")

		var appErr *apperror.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, apperror.CodeUpstreamUnavailable, appErr.Code)
		assert.Equal(t, "CONNECTION_REFUSED", appErr.UpstreamCode)
	})
}

func TestClient_GetRate_RequiresCodes(t *testing.T) {
	_, err := newClient(t, "http://127.0.0.1:1", "").GetRate(context.Background(), "", "PKR")
	assert.Equal(t, apperror.CodeRequiredField, apperror.GetCode(err))
}
