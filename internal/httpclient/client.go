package httpclient

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptrace"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/httptrace/otelhttptrace"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/p2p-arbitrage/internal/apperror"
	"github.com/fd1az/p2p-arbitrage/internal/circuitbreaker"
)

const (
	defaultDialKeepAlive         = 10 * time.Second
	defaultRequestTimeout        = 10 * time.Second
	defaultMaxConnsPerHost       = 5
	defaultIdleConnTimeout       = 2 * time.Minute
	defaultExpectContinueTimeout = 100 * time.Millisecond

	metricRequestCounter = "http_client_requests_total"
)

// Client talks JSON to one upstream API. Every failure it returns is an
// *apperror.AppError: transport failures and unexpected statuses are
// UPSTREAM_UNAVAILABLE, error envelopes matched by a RejectFunc and
// undecodable bodies are UPSTREAM_REJECTED.
type Client struct {
	http           *http.Client
	baseURL        string
	provider       string
	operation      string
	tracer         trace.Tracer
	requestCounter metric.Int64Counter
	traceResponse  bool
	cb             *circuitbreaker.CircuitBreaker[struct{}]
}

// New builds a client from opts.
func New(opts ...Option) (*Client, error) {
	o := options{
		provider: "default",
		timeout:  defaultRequestTimeout,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.operation == "" {
		o.operation = o.provider + " request"
	}

	transport := &http.Transport{
		DialContext: (&net.Dialer{
			KeepAlive: defaultDialKeepAlive,
		}).DialContext,
		MaxConnsPerHost:       defaultMaxConnsPerHost,
		IdleConnTimeout:       defaultIdleConnTimeout,
		ExpectContinueTimeout: defaultExpectContinueTimeout,
	}
	if o.insecureTLS {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in via config
	}

	httpClient := &http.Client{
		Timeout: o.timeout,
		Transport: otelhttp.NewTransport(
			transport,
			otelhttp.WithClientTrace(func(ctx context.Context) *httptrace.ClientTrace {
				return otelhttptrace.NewClientTrace(ctx)
			}),
		),
	}

	meterProvider := o.meterProvider
	if meterProvider == nil {
		meterProvider = otel.GetMeterProvider()
	}
	meter := meterProvider.Meter(
		"instrumented_http_client",
		metric.WithInstrumentationAttributes(attribute.String("provider", o.provider)),
	)
	requestCounter, err := meter.Int64Counter(
		metricRequestCounter,
		metric.WithDescription("Total number of HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	tracer := o.tracer
	if tracer == nil {
		tracer = otel.GetTracerProvider().Tracer("instrumented_http_client")
	}

	c := &Client{
		http:           httpClient,
		baseURL:        strings.TrimSuffix(o.baseURL, "/"),
		provider:       o.provider,
		operation:      o.operation,
		tracer:         tracer,
		requestCounter: requestCounter,
		traceResponse:  o.traceResponse,
	}

	if o.breaker != nil {
		bcfg := *o.breaker
		if o.logger != nil {
			log := o.logger
			bcfg.OnStateChange = func(name string, from, to gobreaker.State) {
				log.Warn(context.Background(), "circuit breaker state change",
					"breaker", name, "from", from.String(), "to", to.String())
			}
		}
		// Only transport failures open the breaker.
		bcfg.IsSuccessful = func(err error) bool {
			return err == nil || apperror.GetCode(err) != apperror.CodeUpstreamUnavailable
		}
		c.cb = circuitbreaker.New[struct{}](bcfg)
	}

	return c, nil
}

// Get sends a GET with query and decodes a 2xx JSON body into out.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any, opts ...CallOption) error {
	return c.call(ctx, http.MethodGet, path, query, nil, out, opts)
}

// Post sends body as JSON and decodes a 2xx JSON body into out.
func (c *Client) Post(ctx context.Context, path string, body, out any, opts ...CallOption) error {
	return c.call(ctx, http.MethodPost, path, nil, body, out, opts)
}

// BreakerState reports the breaker state, or false when no breaker is configured.
func (c *Client) BreakerState() (gobreaker.State, bool) {
	if c.cb == nil {
		return gobreaker.StateClosed, false
	}
	return c.cb.State(), true
}

func (c *Client) call(ctx context.Context, method, path string, query url.Values, body, out any, opts []CallOption) error {
	var co callOptions
	for _, opt := range opts {
		opt(&co)
	}

	if c.cb == nil {
		return c.exchange(ctx, method, path, query, body, out, co)
	}

	_, err := c.cb.Execute(func() (struct{}, error) {
		return struct{}{}, c.exchange(ctx, method, path, query, body, out, co)
	})
	if circuitbreaker.IsRejection(err) {
		return apperror.Unavailable(c.operation, CodeCircuitOpen, err)
	}
	return err
}

// exchange performs one round trip and maps its outcome onto apperror.
func (c *Client) exchange(ctx context.Context, method, path string, query url.Values, body, out any, co callOptions) error {
	ctx, span := c.tracer.Start(ctx, "http.request",
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("http.url", path),
			attribute.String("provider", c.provider),
		),
	)
	defer span.End()

	fullURL := c.baseURL + "/" + strings.TrimPrefix(path, "/")
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	var bodyReader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to marshal body")
			return apperror.Internal(apperror.CodeInternalError, c.operation, fmt.Errorf("failed to marshal body: %w", err))
		}
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, bodyReader)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create request")
		return apperror.Internal(apperror.CodeInternalError, c.operation, fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return c.fail(ctx, span, co, apperror.Unavailable(c.operation, TransportCode(err), err))
	}

	payload, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return c.fail(ctx, span, co, apperror.Unavailable(c.operation, TransportCode(err), err))
	}

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if c.traceResponse {
		span.AddEvent("response.body", trace.WithAttributes(
			attribute.String("http.response_body", string(payload)),
		))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if co.reject != nil {
			if code, message, ok := co.reject(resp.StatusCode, payload); ok {
				return c.fail(ctx, span, co, apperror.Rejected(c.operation, code, message))
			}
		}
		statusErr := &StatusError{StatusCode: resp.StatusCode}
		return c.fail(ctx, span, co, apperror.Unavailable(c.operation, statusErr.Code(), statusErr))
	}

	if out != nil && len(payload) > 0 {
		if err := json.Unmarshal(payload, out); err != nil {
			return c.fail(ctx, span, co, apperror.Rejected(c.operation, CodeInvalidResponse, err.Error()))
		}
	}

	c.recordMetrics(ctx, co, true)
	return nil
}

func (c *Client) fail(ctx context.Context, span trace.Span, co callOptions, err *apperror.AppError) error {
	span.RecordError(err)
	span.SetAttributes(attribute.String("upstream.code", err.UpstreamCode))
	span.SetStatus(codes.Error, err.Error())
	c.recordMetrics(ctx, co, false)
	return err
}

func (c *Client) recordMetrics(ctx context.Context, co callOptions, success bool) {
	attrs := append([]attribute.KeyValue{
		attribute.String("provider", c.provider),
		attribute.Bool("success", success),
	}, co.labels...)
	c.requestCounter.Add(ctx, 1, metric.WithAttributes(attrs...))
}
