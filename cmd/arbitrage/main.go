// Package main is the entry point for the P2P fiat arbitrage calculator.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/fd1az/p2p-arbitrage/business/arbitrage"
	arbitrageDI "github.com/fd1az/p2p-arbitrage/business/arbitrage/di"
	"github.com/fd1az/p2p-arbitrage/business/arbitrage/domain"
	"github.com/fd1az/p2p-arbitrage/business/arbitrage/infra"
	"github.com/fd1az/p2p-arbitrage/business/fiat"
	"github.com/fd1az/p2p-arbitrage/business/p2p"
	"github.com/fd1az/p2p-arbitrage/internal/apm"
	"github.com/fd1az/p2p-arbitrage/internal/config"
	"github.com/fd1az/p2p-arbitrage/internal/logger"
	"github.com/fd1az/p2p-arbitrage/internal/metrics"
	"github.com/fd1az/p2p-arbitrage/internal/monolith"
	"github.com/fd1az/p2p-arbitrage/internal/server"
	"github.com/fd1az/p2p-arbitrage/internal/server/middleware"
	"github.com/fd1az/p2p-arbitrage/pkg/ui"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

// Run modes.
const (
	modeServer = "server"
	modeTUI    = "tui"
	modeOnce   = "once"
)

type options struct {
	configPath string
	mode       string
	json       bool
	extended   bool

	asset  string
	amount string
	buy    string
	sell   string
}

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	var opts options
	flag.StringVar(&opts.configPath, "config", "", "Path to configuration file")
	flag.StringVar(&opts.mode, "mode", modeTUI, "Run mode: server, tui or once")
	flag.BoolVar(&opts.json, "json", false, "Print the result as JSON (once mode)")
	flag.BoolVar(&opts.extended, "extended", false, "Include upstream error details (once mode)")
	flag.StringVar(&opts.asset, "asset", "", "Crypto asset to route through, e.g. USDT")
	flag.StringVar(&opts.amount, "amount", "", "Amount of buy currency to spend")
	flag.StringVar(&opts.buy, "buy", "", "Buy (source) fiat currency")
	flag.StringVar(&opts.sell, "sell", "", "Sell (target) fiat currency")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("p2p-arbitrage %s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	switch opts.mode {
	case modeServer, modeTUI, modeOnce:
	default:
		fmt.Fprintf(os.Stderr, "error: unknown mode %q\n", opts.mode)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// The TUI owns the terminal, so logs only go to a file there.
	var out io.Writer = os.Stderr
	if opts.mode == modeTUI {
		out = io.Discard
	}
	if cfg.App.LogFile != "" {
		fw := logger.NewFileWriter(logger.FileConfig{
			Path:       cfg.App.LogFile,
			MaxSizeMB:  cfg.App.LogMaxSize,
			MaxBackups: cfg.App.LogBackups,
			MaxAgeDays: cfg.App.LogMaxAge,
			Compress:   true,
		})
		defer fw.Close()
		out = fw
	}
	log := logger.New(out, logger.ParseLevel(cfg.App.LogLevel), cfg.App.Name, nil)

	log.Info(ctx, "starting p2p arbitrage calculator",
		"version", version,
		"mode", opts.mode,
		"environment", cfg.App.Environment,
	)

	traceProvider := apm.NewEmptyTraceProvider()
	if cfg.Telemetry.Enabled {
		traceProvider, err = apm.NewTraceProvider(ctx, apm.Settings{
			Provider:    apm.Provider(cfg.Telemetry.Provider),
			ServiceName: cfg.Telemetry.ServiceName,
			Environment: cfg.App.Environment,
			Endpoint:    cfg.Telemetry.Endpoint,
			SampleRate:  cfg.Telemetry.SampleRate,
		}, log)
		if err != nil {
			return fmt.Errorf("failed to init tracing: %w", err)
		}
	}
	defer traceProvider.Stop()

	// Metrics are registered before modules so instruments bind to the
	// Prometheus-backed provider.
	metricProvider, err := metrics.NewMetricProvider(metricOptions(cfg)...)
	if err != nil {
		return fmt.Errorf("failed to init metrics: %w", err)
	}
	defer metricProvider.Shutdown(context.Background())

	mono := monolith.New(cfg, log, version)

	modules := []monolith.Module{
		&fiat.Module{},
		&p2p.Module{},
		&arbitrage.Module{}, // Depends on fiat and p2p
	}

	if err := mono.RegisterModules(modules...); err != nil {
		return fmt.Errorf("failed to register modules: %w", err)
	}
	if err := mono.StartModules(ctx, modules...); err != nil {
		return fmt.Errorf("failed to start modules: %w", err)
	}

	calc := arbitrageDI.GetCalculator(mono.Services())

	switch opts.mode {
	case modeServer:
		trusted, err := middleware.ParseTrustedProxies(cfg.Server.TrustedProxies)
		if err != nil {
			return fmt.Errorf("invalid server.trusted_proxies: %w", err)
		}
		srv := server.New(server.Config{
			Addr:              cfg.Server.Addr(),
			ReadTimeout:       cfg.Server.ReadTimeout,
			WriteTimeout:      cfg.Server.WriteTimeout,
			ShutdownTimeout:   cfg.Server.ShutdownTimeout,
			RequestsPerMinute: cfg.Server.RequestsPerMinute,
			CORSOrigins:       cfg.Server.CORSOrigins,
			TrustedProxies:    trusted,
		}, mono.Mux(), log)

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			return srv.Run(gctx)
		})
		if cfg.Telemetry.PrometheusPort > 0 {
			g.Go(func() error {
				addr := ":" + strconv.Itoa(cfg.Telemetry.PrometheusPort)
				return metrics.Serve(gctx, addr, metricProvider, log)
			})
		}
		return g.Wait()

	case modeOnce:
		req, err := requestFrom(cfg, opts)
		if err != nil {
			return err
		}
		reporter := infra.NewConsoleReporter(
			infra.WithJSON(opts.json),
			infra.WithExtendedErrors(opts.extended),
		)
		outcome := calc.Calculate(ctx, req)
		if err := reporter.Report(ctx, req, outcome); err != nil {
			return err
		}
		if outcome.Failed() {
			return errors.New(outcome.Error.CompactText)
		}
		return nil

	default:
		req, err := requestFrom(cfg, opts)
		if err != nil {
			return err
		}
		if err := ui.Run(ctx, calc, req, mono.AssetRegistry()); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			return fmt.Errorf("TUI error: %w", err)
		}
		return nil
	}
}

// metricOptions always exposes Prometheus and adds the OTLP push reader when
// a collector is configured.
func metricOptions(cfg *config.Config) []metrics.OptionFn {
	opts := []metrics.OptionFn{
		metrics.WithServiceName(cfg.Telemetry.ServiceName),
		metrics.WithProviderConfig(metrics.NewPrometheusConfig()),
	}
	if cfg.Telemetry.MetricsEndpoint != "" {
		opts = append(opts, metrics.WithProviderConfig(metrics.NewOtelCollectorConfig(
			cfg.Telemetry.MetricsEndpoint, nil, cfg.Telemetry.MetricsInsecure,
		)))
	}
	return opts
}

// requestFrom merges the request flags over the configured defaults.
func requestFrom(cfg *config.Config, opts options) (domain.Request, error) {
	req := domain.Request{
		Asset:             cfg.Defaults.Asset,
		BuyAmount:         cfg.Defaults.AmountDecimal(),
		BuyCurrency:       cfg.Defaults.BuyCurrency,
		SellCurrency:      cfg.Defaults.SellCurrency,
		PaymentMethodBuy:  cfg.Defaults.PaymentMethodBuy,
		PaymentMethodSell: cfg.Defaults.PaymentMethodSell,
	}
	if opts.asset != "" {
		req.Asset = opts.asset
	}
	if opts.buy != "" {
		req.BuyCurrency = opts.buy
	}
	if opts.sell != "" {
		req.SellCurrency = opts.sell
	}
	if opts.amount != "" {
		amount, err := decimal.NewFromString(opts.amount)
		if err != nil {
			return domain.Request{}, fmt.Errorf("invalid -amount %q: %w", opts.amount, err)
		}
		req.BuyAmount = amount
	}

	req = req.WithDefaults()
	if err := req.Validate(); err != nil {
		return domain.Request{}, err
	}
	return req, nil
}
