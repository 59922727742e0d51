package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/fd1az/p2p-arbitrage/business/arbitrage/domain"
	fiatApp "github.com/fd1az/p2p-arbitrage/business/fiat/app"
	fiatDomain "github.com/fd1az/p2p-arbitrage/business/fiat/domain"
	p2pApp "github.com/fd1az/p2p-arbitrage/business/p2p/app"
	p2pDomain "github.com/fd1az/p2p-arbitrage/business/p2p/domain"
	"github.com/fd1az/p2p-arbitrage/internal/apm"
	"github.com/fd1az/p2p-arbitrage/internal/apperror"
	"github.com/fd1az/p2p-arbitrage/internal/logger"
)

const (
	instrumentationName = "github.com/fd1az/p2p-arbitrage/business/arbitrage"

	metricCalculations = "arbitrage_calculations_total"
	metricDuration     = "arbitrage_calculation_duration_seconds"
	metricProfit       = "arbitrage_profit"

	// boughtScale is the number of fractional digits kept when converting
	// the buy amount into asset units.
	boughtScale = 16

	codeInvalidAdvertisement = "INVALID_ADVERTISEMENT"
)

// Option configures a Calculator.
type Option func(*calculatorOptions)

type calculatorOptions struct {
	meterProvider metric.MeterProvider
	tracer        apm.Tracer
}

// WithMeterProvider sets the meter provider used for calculation metrics.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *calculatorOptions) {
		o.meterProvider = mp
	}
}

// WithTracer sets the tracer used for stage spans.
func WithTracer(t apm.Tracer) Option {
	return func(o *calculatorOptions) {
		o.tracer = t
	}
}

// Calculator runs the buy-then-sell pipeline: fiat rate, buy-side search,
// sell-side search, then profit. Stages run strictly in order and the first
// failure stops the run. It holds no mutable state and is safe for
// concurrent use.
type Calculator struct {
	rates  fiatApp.RateProvider
	market p2pApp.MarketProvider
	log    logger.LoggerInterface
	tracer apm.Tracer
	newID  func() string

	calculations metric.Int64Counter
	duration     metric.Float64Histogram
	profit       metric.Float64Gauge
}

var _ Service = (*Calculator)(nil)

// NewCalculator creates a Calculator over the given providers.
func NewCalculator(
	rates fiatApp.RateProvider,
	market p2pApp.MarketProvider,
	log logger.LoggerInterface,
	opts ...Option,
) (*Calculator, error) {
	o := calculatorOptions{
		meterProvider: otel.GetMeterProvider(),
		tracer:        apm.NewTracer(instrumentationName),
	}
	for _, opt := range opts {
		opt(&o)
	}

	meter := o.meterProvider.Meter(instrumentationName)

	calculations, err := meter.Int64Counter(
		metricCalculations,
		metric.WithDescription("Arbitrage calculations by outcome and error code"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s counter: %w", metricCalculations, err)
	}

	duration, err := meter.Float64Histogram(
		metricDuration,
		metric.WithDescription("End-to-end duration of an arbitrage calculation"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s histogram: %w", metricDuration, err)
	}

	profit, err := meter.Float64Gauge(
		metricProfit,
		metric.WithDescription("Profit of the last successful calculation, in the sell currency"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s gauge: %w", metricProfit, err)
	}

	return &Calculator{
		rates:        rates,
		market:       market,
		log:          log,
		tracer:       o.tracer,
		newID:        uuid.NewString,
		calculations: calculations,
		duration:     duration,
		profit:       profit,
	}, nil
}

// Calculate runs the pipeline and folds any failure into an ErrorRecord.
// The returned Outcome always has exactly one of Result or Error set.
func (c *Calculator) Calculate(ctx context.Context, req domain.Request) domain.Outcome {
	result, err := c.Run(ctx, req)
	if err != nil {
		return domain.Outcome{Error: NormalizeError(err)}
	}
	return domain.Outcome{Result: result}
}

// Run executes the pipeline. Errors are *apperror.AppError values.
func (c *Calculator) Run(ctx context.Context, req domain.Request) (result *domain.Result, err error) {
	id := c.newID()

	ctx, span := c.tracer.StartSpanFromContext(ctx, "arbitrage.Calculate")
	defer span.End()

	span.SetAttributes(
		attribute.String("calculation.id", id),
		attribute.String("arbitrage.asset", req.Asset),
		attribute.String("arbitrage.buy_currency", req.BuyCurrency),
		attribute.String("arbitrage.sell_currency", req.SellCurrency),
		attribute.String("arbitrage.buy_amount", req.BuyAmount.String()),
	)

	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = apperror.Internal(apperror.CodeInternalError, "calculation panicked", fmt.Errorf("%v", r))
		}

		c.record(ctx, req, result, err, time.Since(start))

		if err != nil {
			span.NoticeError(err)
			c.log.Warn(ctx, "arbitrage calculation failed",
				"calculation_id", id,
				"asset", req.Asset,
				"buy_currency", req.BuyCurrency,
				"sell_currency", req.SellCurrency,
				"error", err,
			)
			return
		}

		span.SetAttributes(attribute.String("arbitrage.profit", result.Profit.StringFixed(2)))
		c.log.Info(ctx, "arbitrage calculated",
			"calculation_id", id,
			"asset", req.Asset,
			"buy_currency", req.BuyCurrency,
			"sell_currency", req.SellCurrency,
			"profit", result.Profit.StringFixed(2),
			"duration", time.Since(start),
		)
	}()

	return c.run(ctx, req)
}

func (c *Calculator) run(ctx context.Context, req domain.Request) (*domain.Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// Stage 1: fiat conversion.
	rate, err := c.fetchRate(ctx, req)
	if err != nil {
		return nil, err
	}
	fiatTotal := rate.Convert(req.BuyAmount).Round(0)

	// Stage 2: buy the asset with the buy currency.
	buyAd, err := c.selectBuy(ctx, req)
	if err != nil {
		return nil, err
	}
	bought := req.BuyAmount.DivRound(buyAd.Price, boughtScale)

	// Stage 3: sell the asset for the sell currency.
	sellAd, err := c.selectSell(ctx, req, fiatTotal, bought)
	if err != nil {
		return nil, err
	}
	sold := bought.Mul(sellAd.Price).Round(2)

	result := &domain.Result{
		Asset:              req.Asset,
		BuyCurrency:        req.BuyCurrency,
		SellCurrency:       req.SellCurrency,
		BuyAmount:          req.BuyAmount,
		BuyPrice:           buyAd.Price,
		BuyAdvertiserID:    buyAd.AdvertiserID,
		BuyAdvertiserName:  buyAd.AdvertiserName,
		BoughtAssetAmount:  bought,
		SellPrice:          sellAd.Price,
		SellAdvertiserID:   sellAd.AdvertiserID,
		SellAdvertiserName: sellAd.AdvertiserName,
		SoldCurrencyAmount: sold,
		FiatRate:           rate.Rate,
		FiatTotalAmount:    fiatTotal,
		Profit:             sold.Sub(fiatTotal),
	}
	result.Summarize()

	return result, nil
}

func (c *Calculator) fetchRate(ctx context.Context, req domain.Request) (*fiatDomain.ExchangeRate, error) {
	ctx, span := c.tracer.StartSpanFromContext(ctx, "arbitrage.FetchRate")
	defer span.End()

	rate, err := c.rates.GetRate(ctx, req.BuyCurrency, req.SellCurrency)
	if err != nil {
		span.NoticeError(err)
		return nil, err
	}
	if rate == nil || !rate.Rate.IsPositive() {
		err := apperror.New(apperror.CodeNoRateData,
			apperror.WithContext(req.BuyCurrency+"/"+req.SellCurrency))
		span.NoticeError(err)
		return nil, err
	}

	span.SetAttributes(attribute.String("fiat.rate", rate.Rate.String()))
	return rate, nil
}

func (c *Calculator) selectBuy(ctx context.Context, req domain.Request) (p2pDomain.Advertisement, error) {
	ctx, span := c.tracer.StartSpanFromContext(ctx, "arbitrage.SelectBuy")
	defer span.End()

	ads, err := c.market.Search(ctx, p2pDomain.SearchQuery{
		Side:          p2pDomain.SideBuy,
		Amount:        req.BuyAmount,
		PaymentMethod: req.PaymentMethodBuy,
		Currency:      req.BuyCurrency,
		Asset:         req.Asset,
	})
	if err != nil {
		span.NoticeError(err)
		return p2pDomain.Advertisement{}, err
	}

	ad, err := p2pDomain.SelectBuy(ads)
	if err != nil {
		span.NoticeError(err)
		return p2pDomain.Advertisement{}, err
	}
	if !ad.Price.IsPositive() {
		err := apperror.Rejected("buy advertisement", codeInvalidAdvertisement,
			"price must be positive, got "+ad.Price.String())
		span.NoticeError(err)
		return p2pDomain.Advertisement{}, err
	}

	span.SetAttributes(
		attribute.Int("p2p.ads", len(ads)),
		attribute.String("p2p.price", ad.Price.String()),
		attribute.String("p2p.advertiser", ad.AdvertiserID),
	)
	return ad, nil
}

func (c *Calculator) selectSell(
	ctx context.Context,
	req domain.Request,
	fiatTotal, bought decimal.Decimal,
) (p2pDomain.Advertisement, error) {
	ctx, span := c.tracer.StartSpanFromContext(ctx, "arbitrage.SelectSell")
	defer span.End()

	ads, err := c.market.Search(ctx, p2pDomain.SearchQuery{
		Side:          p2pDomain.SideSell,
		Amount:        fiatTotal,
		PaymentMethod: req.PaymentMethodSell,
		Currency:      req.SellCurrency,
		Asset:         req.Asset,
	})
	if err != nil {
		span.NoticeError(err)
		return p2pDomain.Advertisement{}, err
	}

	ad, err := p2pDomain.SelectSell(ads, bought)
	if err != nil {
		span.NoticeError(err)
		return p2pDomain.Advertisement{}, err
	}

	span.SetAttributes(
		attribute.Int("p2p.ads", len(ads)),
		attribute.String("p2p.price", ad.Price.String()),
		attribute.String("p2p.advertiser", ad.AdvertiserID),
	)
	return ad, nil
}

func (c *Calculator) record(ctx context.Context, req domain.Request, result *domain.Result, err error, elapsed time.Duration) {
	outcome, code := "success", ""
	if err != nil {
		outcome, code = "failure", NormalizeError(err).Code
	}

	attrs := metric.WithAttributes(
		attribute.String("outcome", outcome),
		attribute.String("code", code),
	)
	c.calculations.Add(ctx, 1, attrs)
	c.duration.Record(ctx, elapsed.Seconds(), attrs)

	if result != nil {
		profit, _ := result.Profit.Float64()
		c.profit.Record(ctx, profit, metric.WithAttributes(
			attribute.String("asset", req.Asset),
			attribute.String("pair", req.BuyCurrency+"/"+req.SellCurrency),
		))
	}
}
