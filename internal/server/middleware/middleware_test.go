package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
)

func TestExtractClientIP(t *testing.T) {
	trusted, err := ParseTrustedProxies([]string{"10.0.0.0/8", "192.0.2.99"})
	if err != nil {
		t.Fatalf("ParseTrustedProxies() error = %v", err)
	}

	tests := []struct {
		name       string
		headers    map[string]string
		remoteAddr string
		want       string
	}{
		{"forwarded chain via proxy", map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.2"}, "10.0.0.1:80", "203.0.113.7"},
		{"spoofed head via proxy", map[string]string{"X-Forwarded-For": "1.1.1.1, 203.0.113.7"}, "10.0.0.1:80", "203.0.113.7"},
		{"real ip via proxy", map[string]string{"X-Real-IP": " 198.51.100.2 "}, "192.0.2.99:80", "198.51.100.2"},
		{"proxy without headers", nil, "10.0.0.1:80", "10.0.0.1"},
		{"untrusted peer forwarded", map[string]string{"X-Forwarded-For": "203.0.113.7"}, "198.51.100.9:4000", "198.51.100.9"},
		{"untrusted peer real ip", map[string]string{"X-Real-IP": "203.0.113.7"}, "198.51.100.9:4000", "198.51.100.9"},
		{"remote addr", nil, "192.0.2.10:5555", "192.0.2.10"},
		{"remote addr without port", nil, "192.0.2.11", "192.0.2.11"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := extractClientIP(r, trusted); got != tt.want {
				t.Errorf("extractClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractClientIP_IgnoresHeadersWithoutTrustedProxies(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.1:80"
	r.Header.Set("X-Forwarded-For", "203.0.113.7")
	r.Header.Set("X-Real-IP", "203.0.113.8")

	if got := extractClientIP(r, nil); got != "10.0.0.1" {
		t.Errorf("extractClientIP() = %q, want 10.0.0.1", got)
	}
}

func TestParseTrustedProxies(t *testing.T) {
	proxies, err := ParseTrustedProxies([]string{" 10.0.0.0/8 ", "", "::1", "192.0.2.7"})
	if err != nil {
		t.Fatalf("ParseTrustedProxies() error = %v", err)
	}
	if len(proxies) != 3 {
		t.Fatalf("len = %d, want 3", len(proxies))
	}
	if !proxies.contains("10.20.30.40") || !proxies.contains("::1") || !proxies.contains("192.0.2.7") {
		t.Errorf("expected configured proxies to be trusted: %v", proxies)
	}
	if proxies.contains("192.0.2.8") {
		t.Error("192.0.2.8 should not be trusted")
	}

	for _, bad := range []string{"10.0.0.0/33", "proxy.internal"} {
		if _, err := ParseTrustedProxies([]string{bad}); err == nil {
			t.Errorf("ParseTrustedProxies(%q) expected error", bad)
		}
	}
}

func TestRequestID_GeneratesUUID(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if _, err := uuid.Parse(seen); err != nil {
		t.Fatalf("request id %q is not a UUID: %v", seen, err)
	}
	if rec.Header().Get(RequestIDHeader) != seen {
		t.Errorf("response header = %q, want %q", rec.Header().Get(RequestIDHeader), seen)
	}
}

func TestLogging_CapturesStatus(t *testing.T) {
	rw := &responseWriter{ResponseWriter: httptest.NewRecorder(), statusCode: http.StatusOK}
	rw.WriteHeader(http.StatusTeapot)
	rw.WriteHeader(http.StatusOK)

	if rw.statusCode != http.StatusTeapot {
		t.Errorf("statusCode = %d, want %d", rw.statusCode, http.StatusTeapot)
	}
}
