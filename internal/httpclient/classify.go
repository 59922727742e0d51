package httpclient

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"syscall"

	"github.com/fd1az/p2p-arbitrage/internal/apperror"
)

// Transport failure classes reported as upstream codes.
const (
	CodeTimeout           = "TIMEOUT"
	CodeCanceled          = "CANCELED"
	CodeConnectionRefused = "CONNECTION_REFUSED"
	CodeDNSFailure        = "DNS_FAILURE"
	CodeNetworkError      = "NETWORK_ERROR"
	CodeCircuitOpen       = "CIRCUIT_OPEN"

	// CodeInvalidResponse marks a 2xx body that did not decode.
	CodeInvalidResponse = "INVALID_RESPONSE"
)

// StatusError reports a non-2xx response that carried no usable payload.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected HTTP status %d", e.StatusCode)
}

// Code returns the HTTP_<status> class for the error.
func (e *StatusError) Code() string {
	return fmt.Sprintf("HTTP_%d", e.StatusCode)
}

// TransportCode classifies a round-trip failure into a short, stable code.
// Unknown errors fall into NETWORK_ERROR.
func TransportCode(err error) string {
	if err == nil {
		return ""
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code()
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return CodeTimeout
	}
	if errors.Is(err, context.Canceled) {
		return CodeCanceled
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		if dnsErr.IsTimeout {
			return CodeTimeout
		}
		return CodeDNSFailure
	}

	if errors.Is(err, syscall.ECONNREFUSED) {
		return CodeConnectionRefused
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return CodeTimeout
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return CodeTimeout
	}

	return CodeNetworkError
}

// IsInvalidResponse reports whether err came from a body that did not decode.
func IsInvalidResponse(err error) bool {
	var appErr *apperror.AppError
	return errors.As(err, &appErr) &&
		appErr.Code == apperror.CodeUpstreamRejected &&
		appErr.UpstreamCode == CodeInvalidResponse
}
