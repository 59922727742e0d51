// Package apm configures OpenTelemetry tracing for the service.
package apm

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/exporters/zipkin"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/fd1az/p2p-arbitrage/internal/logger"
)

type Provider string

const (
	ZipkinProvider   Provider = "zipkin"
	ConsoleProvider  Provider = "console"
	OTLPGRPCProvider Provider = "otlp-grpc"
	OTLPHTTPProvider Provider = "otlp-http"
	EmptyProvider    Provider = "none"
)

// TraceProvider flushes and stops the exporter pipeline.
type TraceProvider interface {
	Stop() error
}

// Settings configures NewTraceProvider.
type Settings struct {
	Provider    Provider
	ServiceName string
	Environment string
	Endpoint    string
	SampleRate  float64
	// Output receives console spans. Defaults to stderr.
	Output io.Writer
}

type traceProvider struct {
	tp *sdktrace.TracerProvider
}

type emptyProvider struct{}

func (emptyProvider) Stop() error { return nil }

// NewEmptyTraceProvider leaves the global no-op tracer in place.
func NewEmptyTraceProvider() TraceProvider {
	return emptyProvider{}
}

// NewTraceProvider builds the exporter named by s.Provider, installs it as
// the global tracer provider and sets the W3C propagators.
func NewTraceProvider(ctx context.Context, s Settings, log logger.LoggerInterface) (TraceProvider, error) {
	if s.Provider == EmptyProvider || s.Provider == "" {
		return NewEmptyTraceProvider(), nil
	}

	exp, err := newExporter(ctx, s)
	if err != nil {
		return nil, fmt.Errorf("create %s exporter: %w", s.Provider, err)
	}

	rsrc, err := resource.New(ctx,
		resource.WithTelemetrySDK(),
		resource.WithAttributes(
			attribute.String("service.name", s.ServiceName),
			attribute.String("deployment.environment", s.Environment),
			attribute.String("otel.provider", string(s.Provider)),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("build resource: %w", err)
	}

	sampler := sdktrace.AlwaysSample()
	if s.SampleRate > 0 && s.SampleRate < 1 {
		sampler = sdktrace.ParentBased(sdktrace.TraceIDRatioBased(s.SampleRate))
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sampler),
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(rsrc),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(
		propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		))

	log.Info(ctx, "tracing enabled", "provider", string(s.Provider), "endpoint", s.Endpoint)

	return &traceProvider{tp}, nil
}

func newExporter(ctx context.Context, s Settings) (sdktrace.SpanExporter, error) {
	switch s.Provider {
	case ConsoleProvider:
		out := s.Output
		if out == nil {
			out = os.Stderr
		}
		return stdouttrace.New(stdouttrace.WithWriter(out))

	case ZipkinProvider:
		return zipkin.New(s.Endpoint)

	case OTLPGRPCProvider:
		return otlptracegrpc.New(ctx, otlptracegrpc.WithEndpointURL(s.Endpoint))

	case OTLPHTTPProvider:
		return otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(s.Endpoint))

	default:
		return nil, fmt.Errorf("unknown provider %q", s.Provider)
	}
}

func (o *traceProvider) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5) //nolint:gomnd
	defer cancel()

	return o.tp.Shutdown(ctx)
}
