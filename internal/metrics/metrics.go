// Package metrics wires the OpenTelemetry meter provider to a Prometheus
// registry and, optionally, an OTLP collector.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"

	"github.com/fd1az/p2p-arbitrage/internal/logger"
)

type MetricProvider interface {
	Meter(name string, options ...metric.MeterOption) metric.Meter
	Shutdown(ctx context.Context) error
	// Handler serves the Prometheus registry, or 404 when Prometheus is off.
	Handler() http.Handler
}

type meterProvider struct {
	*sdkmetric.MeterProvider
	registry *promclient.Registry
}

func (m *meterProvider) Handler() http.Handler {
	if m.registry == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func getReaders(ctx context.Context, cfg Config) ([]sdkmetric.Reader, *promclient.Registry, error) {
	var (
		readers  []sdkmetric.Reader
		registry *promclient.Registry
	)

	for _, provider := range cfg.Provider {
		switch provider.Provider {
		case PrometheusProvider:
			registry = promclient.NewRegistry()
			registry.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)

			promExporter, err := prometheus.New(prometheus.WithRegisterer(registry))
			if err != nil {
				return nil, nil, fmt.Errorf("prometheus exporter: %w", err)
			}

			readers = append(readers, promExporter)
		case OtelCollector:
			opts := []otlpmetricgrpc.Option{
				otlpmetricgrpc.WithEndpointURL(provider.Endpoint),
				otlpmetricgrpc.WithHeaders(provider.Headers),
			}

			if provider.Insecure {
				opts = append(opts, otlpmetricgrpc.WithInsecure())
			}

			exp, err := otlpmetricgrpc.New(ctx, opts...)
			if err != nil {
				return nil, nil, fmt.Errorf("otlp metric exporter: %w", err)
			}

			readers = append(readers, sdkmetric.NewPeriodicReader(exp))
		}
	}

	return readers, registry, nil
}

// NewMetricProvider builds the meter provider and installs it globally.
func NewMetricProvider(options ...OptionFn) (MetricProvider, error) {
	ctx := context.Background()

	var cfg Config
	for _, opt := range options {
		cfg = opt(cfg)
	}

	readers, registry, err := getReaders(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var metricsOps []sdkmetric.Option
	for _, reader := range readers {
		metricsOps = append(metricsOps, sdkmetric.WithReader(reader))
	}

	metricsOps = append(metricsOps, sdkmetric.WithResource(
		resource.NewSchemaless(attribute.String("service.name", cfg.ServiceName)),
	))

	mp := sdkmetric.NewMeterProvider(metricsOps...)
	otel.SetMeterProvider(mp)

	return &meterProvider{MeterProvider: mp, registry: registry}, nil
}

// Serve exposes /metrics on addr until ctx is done.
func Serve(ctx context.Context, addr string, mp MetricProvider, log logger.LoggerInterface) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", mp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Info(ctx, "serving metrics", "addr", addr, "path", "/metrics")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics server: %w", err)
	}
	return nil
}
