package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeUpstreamUnavailable, http.StatusServiceUnavailable},
		{CodeCircuitOpen, http.StatusServiceUnavailable},
		{CodeUpstreamRejected, http.StatusBadGateway},
		{CodeNoRateData, http.StatusBadGateway},
		{CodeNoAdvertisementFound, http.StatusNotFound},
		{CodeInvalidInput, http.StatusBadRequest},
		{CodeRequiredField, http.StatusBadRequest},
		{CodeRateLimitExceeded, http.StatusTooManyRequests},
		{CodeInternalError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			if got := StatusFor(tt.code); got != tt.want {
				t.Errorf("StatusFor(%s) = %d, want %d", tt.code, got, tt.want)
			}
		})
	}
}

func TestNew_DefaultsMessageFromCatalog(t *testing.T) {
	err := New(CodeNoRateData, WithContext("GBP to PKR"))

	if err.Message != messages[CodeNoRateData] {
		t.Errorf("Message = %q", err.Message)
	}
	if err.Detail() != messages[CodeNoRateData]+": GBP to PKR" {
		t.Errorf("Detail() = %q", err.Detail())
	}
	if err.HasUpstream() {
		t.Error("no upstream details expected")
	}
}

func TestNew_UnknownCodeUsesCodeAsMessage(t *testing.T) {
	err := New(Code("SOMETHING_ODD"))
	if err.Message != "SOMETHING_ODD" {
		t.Errorf("Message = %q", err.Message)
	}
}

func TestUnavailable_CarriesTransportCode(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := Unavailable("exchange rate", "CONNECTION_REFUSED", cause)

	if err.Code != CodeUpstreamUnavailable {
		t.Errorf("Code = %s", err.Code)
	}
	if err.UpstreamCode != "CONNECTION_REFUSED" || err.UpstreamMessage != cause.Error() {
		t.Errorf("upstream = %s/%s", err.UpstreamCode, err.UpstreamMessage)
	}
	if !errors.Is(err, cause) {
		t.Error("cause should be unwrappable")
	}
	if !strings.Contains(err.Error(), "(upstream CONNECTION_REFUSED: dial tcp: connection refused)") {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestRejected(t *testing.T) {
	err := Rejected("p2p search", "000002", "illegal parameter")

	if err.Code != CodeUpstreamRejected {
		t.Errorf("Code = %s", err.Code)
	}
	if !err.HasUpstream() {
		t.Fatal("expected upstream details")
	}
	if err.StatusCode != http.StatusBadGateway {
		t.Errorf("StatusCode = %d", err.StatusCode)
	}
}

func TestWrap(t *testing.T) {
	if Wrap(nil, CodeInternalError, "x") != nil {
		t.Fatal("Wrap(nil) should be nil")
	}

	plain := errors.New("boom")
	wrapped := Wrap(plain, CodeInternalError, "calculate")
	if wrapped.Code != CodeInternalError || wrapped.Context != "calculate" {
		t.Errorf("wrapped = %+v", wrapped)
	}
	if !errors.Is(wrapped, plain) {
		t.Error("plain error should be the cause")
	}

	orig := New(CodeNoAdvertisementFound)
	again := Wrap(fmt.Errorf("select: %w", orig), CodeInternalError, "sell side")
	if again != orig {
		t.Error("an AppError in the chain should be returned as is")
	}
	if again.Context != "sell side" {
		t.Errorf("Context = %q, want filled in", again.Context)
	}
}

func TestIs_ComparesCodes(t *testing.T) {
	err := fmt.Errorf("run: %w", New(CodeNoRateData, WithContext("a")))

	if !errors.Is(err, New(CodeNoRateData)) {
		t.Error("same code should match")
	}
	if errors.Is(err, New(CodeUpstreamRejected)) {
		t.Error("different code should not match")
	}
	if GetCode(err) != CodeNoRateData {
		t.Errorf("GetCode() = %s", GetCode(err))
	}
	if GetCode(errors.New("x")) != CodeUnknownError {
		t.Error("plain errors map to UNKNOWN_ERROR")
	}
}

func TestToLog(t *testing.T) {
	err := New(CodeUpstreamUnavailable, WithUpstream("TIMEOUT", "deadline"), WithCause(errors.New("ctx"))).
		WithTraceID("abc")

	log := err.ToLog()
	for _, k := range []string{"code", "message", "statusCode", "upstreamCode", "traceId", "cause", "stack"} {
		if _, ok := log[k]; !ok {
			t.Errorf("ToLog() missing %q", k)
		}
	}
}
