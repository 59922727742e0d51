package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/p2p-arbitrage/business/p2p/app"
	"github.com/fd1az/p2p-arbitrage/business/p2p/domain"
	"github.com/fd1az/p2p-arbitrage/internal/apperror"
	"github.com/fd1az/p2p-arbitrage/internal/circuitbreaker"
	"github.com/fd1az/p2p-arbitrage/internal/httpclient"
	"github.com/fd1az/p2p-arbitrage/internal/logger"
)

const (
	tracerName = "github.com/fd1az/p2p-arbitrage/business/p2p/infra/binance"

	// BaseURL is the public P2P host.
	BaseURL = "https://p2p.binance.com"

	searchEndpoint = "/bapi/c2c/v2/friendly/c2c/adv/search"

	// CodeInvalidAdvertisement is reported when a row carries malformed numbers.
	CodeInvalidAdvertisement = "INVALID_ADVERTISEMENT"
	// CodeInvalidResponse is reported when the body is not the expected JSON.
	CodeInvalidResponse = httpclient.CodeInvalidResponse

	defaultRows    = 20
	defaultTimeout = 10 * time.Second
)

// Config holds configuration for the P2P client.
type Config struct {
	BaseURL            string
	Rows               int
	Timeout            time.Duration
	InsecureSkipVerify bool
	// Breaker enables a circuit breaker around searches when set.
	Breaker *circuitbreaker.Config
}

// Client searches Binance P2P advertisements.
type Client struct {
	client *httpclient.Client
	config Config
	logger logger.LoggerInterface
	tracer trace.Tracer
}

var _ app.MarketProvider = (*Client)(nil)

// NewClient creates a new P2P client.
func NewClient(cfg Config, log logger.LoggerInterface) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = BaseURL
	}
	if cfg.Rows <= 0 {
		cfg.Rows = defaultRows
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}

	tracer := otel.Tracer(tracerName)

	client, err := httpclient.New(
		httpclient.WithProviderName("binance-p2p"),
		httpclient.WithOperation("binance p2p search"),
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
	}, nil
}

// Search runs one advertisement search. The order of the returned slice is
// the order Binance ranked the advertisements in.
func (c *Client) Search(ctx context.Context, query domain.SearchQuery) ([]domain.Advertisement, error) {
	ctx, span := c.tracer.Start(ctx, "binance.p2p.search",
		trace.WithAttributes(
			attribute.String("side", query.Side.String()),
			attribute.String("asset", query.Asset),
			attribute.String("fiat", query.Currency),
			attribute.String("pay_type", query.PaymentMethod),
			attribute.String("amount", query.Amount.String()),
		),
	)
	defer span.End()

	if err := query.Validate(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid query")
		return nil, err
	}

	ads, err := c.search(ctx, query)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("advertisements", len(ads)))

	c.logger.Debug(ctx, "p2p search completed",
		"side", query.Side.String(),
		"asset", query.Asset,
		"fiat", query.Currency,
		"advertisements", len(ads))

	return ads, nil
}

func (c *Client) search(ctx context.Context, query domain.SearchQuery) ([]domain.Advertisement, error) {
	body := SearchRequest{
		ProMerchantAds: false,
		Page:           1,
		Rows:           c.config.Rows,
		PayTypes:       []string{query.PaymentMethod},
		Countries:      []string{},
		PublisherType:  nil,
		Asset:          query.Asset,
		Fiat:           query.Currency,
		TradeType:      query.Side.String(),
		TransAmount:    query.Amount.String(),
	}

	var result SearchResponse
	err := c.client.Post(ctx, searchEndpoint, body, &result,
		httpclient.WithLabels(
			attribute.String("endpoint", "adv_search"),
			attribute.String("side", query.Side.String()),
		),
		httpclient.WithRejection(rejection),
	)
	if err != nil {
		return nil, err
	}

	if result.Failed() {
		return nil, apperror.Rejected("binance p2p search", result.Code, result.ErrorMessage())
	}

	// Malformed rows are dropped; the rest keep their ranking.
	ads := make([]domain.Advertisement, 0, len(result.Data))
	var firstErr error
	for i, rec := range result.Data {
		ad, err := rec.ToDomain(query.Side)
		if err != nil {
			c.logger.Warn(ctx, "dropping malformed advertisement",
				"index", i,
				"side", query.Side.String(),
				"error", err)
			if firstErr == nil {
				firstErr = fmt.Errorf("advertisement %d: %w", i, err)
			}
			continue
		}
		ads = append(ads, ad)
	}

	if len(ads) == 0 && firstErr != nil {
		return nil, apperror.Rejected("binance p2p search", CodeInvalidAdvertisement, firstErr.Error())
	}

	return ads, nil
}

// BreakerState reports the breaker state, or false when no breaker is configured.
func (c *Client) BreakerState() (gobreaker.State, bool) {
	return c.client.BreakerState()
}

// rejection reads Binance's error envelope off a 4xx response. Other statuses
// stay transport failures.
func rejection(statusCode int, body []byte) (string, string, bool) {
	if statusCode < 400 || statusCode >= 500 {
		return "", "", false
	}
	var envelope SearchResponse
	if err := json.Unmarshal(body, &envelope); err != nil || envelope.Code == "" || envelope.Code == successCode {
		return "", "", false
	}
	return envelope.Code, envelope.ErrorMessage(), true
}
