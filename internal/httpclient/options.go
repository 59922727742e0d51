// Package httpclient is the instrumented JSON client behind the upstream
// adapters. It traces and counts every request and reports failures in the
// apperror model.
package httpclient

import (
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/p2p-arbitrage/internal/circuitbreaker"
	"github.com/fd1az/p2p-arbitrage/internal/logger"
)

type options struct {
	provider      string
	operation     string
	baseURL       string
	timeout       time.Duration
	insecureTLS   bool
	tracer        trace.Tracer
	meterProvider metric.MeterProvider
	traceResponse bool
	breaker       *circuitbreaker.Config
	logger        logger.LoggerInterface
}

// Option configures a Client.
type Option func(*options)

// WithProviderName names the upstream in metrics and spans.
func WithProviderName(name string) Option {
	return func(o *options) {
		o.provider = name
	}
}

// WithOperation sets the context string carried by every returned AppError,
// e.g. "exchange rate lookup".
func WithOperation(operation string) Option {
	return func(o *options) {
		o.operation = operation
	}
}

// WithBaseURL sets the URL that request paths are joined to.
func WithBaseURL(baseURL string) Option {
	return func(o *options) {
		o.baseURL = baseURL
	}
}

// WithRequestTimeout bounds each round trip. Zero keeps the default.
func WithRequestTimeout(timeout time.Duration) Option {
	return func(o *options) {
		if timeout > 0 {
			o.timeout = timeout
		}
	}
}

// WithInsecureSkipVerify disables TLS certificate verification.
func WithInsecureSkipVerify(skip bool) Option {
	return func(o *options) {
		o.insecureTLS = skip
	}
}

// WithTracer sets the tracer used for the per-request span.
func WithTracer(tracer trace.Tracer) Option {
	return func(o *options) {
		o.tracer = tracer
	}
}

// WithResponseTrace records response bodies as span events.
func WithResponseTrace(enabled bool) Option {
	return func(o *options) {
		o.traceResponse = enabled
	}
}

// WithMeterProvider sets the meter provider for the request counter.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) {
		o.meterProvider = mp
	}
}

// WithBreaker guards every request with a circuit breaker that only counts
// UPSTREAM_UNAVAILABLE failures. A nil cfg leaves the client unguarded.
// State changes are logged to log when it is non-nil.
func WithBreaker(cfg *circuitbreaker.Config, log logger.LoggerInterface) Option {
	return func(o *options) {
		o.breaker = cfg
		o.logger = log
	}
}

// RejectFunc inspects a non-2xx response. It returns the upstream code and
// message and true when the body is the API's own error envelope; the call
// then fails as UPSTREAM_REJECTED instead of UPSTREAM_UNAVAILABLE.
type RejectFunc func(statusCode int, body []byte) (code, message string, ok bool)

type callOptions struct {
	labels []attribute.KeyValue
	reject RejectFunc
}

// CallOption configures a single request.
type CallOption func(*callOptions)

// WithLabels adds attributes to the request counter.
func WithLabels(labels ...attribute.KeyValue) CallOption {
	return func(o *callOptions) {
		o.labels = append(o.labels, labels...)
	}
}

// WithRejection sets the envelope check applied to non-2xx responses.
func WithRejection(fn RejectFunc) CallOption {
	return func(o *callOptions) {
		o.reject = fn
	}
}
