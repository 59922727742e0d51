package exchangeratehost

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/p2p-arbitrage/business/fiat/app"
	"github.com/fd1az/p2p-arbitrage/business/fiat/domain"
	"github.com/fd1az/p2p-arbitrage/internal/apperror"
	"github.com/fd1az/p2p-arbitrage/internal/circuitbreaker"
	"github.com/fd1az/p2p-arbitrage/internal/httpclient"
	"github.com/fd1az/p2p-arbitrage/internal/logger"
)

const (
	tracerName = "github.com/fd1az/p2p-arbitrage/business/fiat/infra/exchangeratehost"

	// BaseURL is the public API host.
	BaseURL = "https://api.exchangerate.host"

	convertEndpoint = "/convert"

	// CodeInvalidResponse is reported when the body is not the expected JSON.
	CodeInvalidResponse = httpclient.CodeInvalidResponse

	defaultTimeout = 10 * time.Second
)

// Config holds configuration for the exchange rate client.
type Config struct {
	BaseURL            string
	AccessKey          string
	Timeout            time.Duration
	InsecureSkipVerify bool
	// Breaker enables a circuit breaker around lookups when set.
	Breaker *circuitbreaker.Config
}

// Client fetches spot fiat rates.
type Client struct {
	client *httpclient.Client
	config Config
	logger logger.LoggerInterface
	tracer trace.Tracer
	now    func() time.Time
}

var _ app.RateProvider = (*Client)(nil)

// NewClient creates a new exchange rate client.
func NewClient(cfg Config, log logger.LoggerInterface) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = BaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}

	tracer := otel.Tracer(tracerName)

	client, err := httpclient.New(
		httpclient.WithProviderName("exchangerate-host"),
		httpclient.WithOperation("exchange rate lookup"),
		httpclient.WithBaseURL(cfg.BaseURL),
		httpclient.WithRequestTimeout(cfg.Timeout),
		httpclient.WithInsecureSkipVerify(cfg.InsecureSkipVerify),
		httpclient.WithTracer(tracer),
		httpclient.WithResponseTrace(true),
		httpclient.WithBreaker(cfg.Breaker, log),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	return &Client{
		client: client,
		config: cfg,
		logger: log,
		tracer: tracer,
		now:    time.Now,
	}, nil
}

// GetRate returns the spot rate from -> to.
func (c *Client) GetRate(ctx context.Context, from, to string) (*domain.ExchangeRate, error) {
	ctx, span := c.tracer.Start(ctx, "exchangerate.get_rate",
		trace.WithAttributes(
			attribute.String("from", from),
			attribute.String("to", to),
		),
	)
	defer span.End()

	if strings.TrimSpace(from) == "" || strings.TrimSpace(to) == "" {
		err := apperror.Validation(apperror.CodeRequiredField, "currency code")
		span.RecordError(err)
		return nil, err
	}

	rate, err := c.fetch(ctx, from, to)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.String("rate", rate.Rate.String()))
	c.logger.Debug(ctx, "fetched exchange rate", "pair", rate.Pair(), "rate", rate.Rate.String())

	return rate, nil
}

func (c *Client) fetch(ctx context.Context, from, to string) (*domain.ExchangeRate, error) {
	query := url.Values{}
	query.Set("from", from)
	query.Set("to", to)
	if c.config.AccessKey != "" {
		query.Set("access_key", c.config.AccessKey)
	}

	var result ConvertResponse
	err := c.client.Get(ctx, convertEndpoint, query, &result,
		httpclient.WithLabels(attribute.String("endpoint", "convert")),
	)
	if err != nil {
		// An undecodable body means the pair has no usable rate.
		var appErr *apperror.AppError
		if errors.As(err, &appErr) && httpclient.IsInvalidResponse(appErr) {
			return nil, apperror.New(apperror.CodeNoRateData,
				apperror.WithContext(from+"/"+to),
				apperror.WithUpstream(CodeInvalidResponse, appErr.UpstreamMessage))
		}
		return nil, err
	}

	rate, ok := result.rate()
	if !ok {
		opts := []apperror.Option{apperror.WithContext(from + "/" + to)}
		if result.Error != nil {
			opts = append(opts, apperror.WithUpstream(string(result.Error.Code), result.Error.Message()))
		}
		return nil, apperror.New(apperror.CodeNoRateData, opts...)
	}

	observedAt := c.now().UTC()
	if result.Info.Timestamp > 0 {
		observedAt = time.Unix(result.Info.Timestamp, 0).UTC()
	}

	return &domain.ExchangeRate{
		From:       strings.ToUpper(from),
		To:         strings.ToUpper(to),
		Rate:       rate,
		ObservedAt: observedAt,
	}, nil
}

// BreakerState reports the breaker state, or false when no breaker is configured.
func (c *Client) BreakerState() (gobreaker.State, bool) {
	return c.client.BreakerState()
}
