// Package fiat implements the fiat conversion bounded context.
package fiat

import (
	"context"
	"fmt"

	"github.com/sony/gobreaker/v2"

	"github.com/fd1az/p2p-arbitrage/business/fiat/app"
	fiatDI "github.com/fd1az/p2p-arbitrage/business/fiat/di"
	"github.com/fd1az/p2p-arbitrage/business/fiat/infra/exchangeratehost"
	"github.com/fd1az/p2p-arbitrage/internal/circuitbreaker"
	"github.com/fd1az/p2p-arbitrage/internal/di"
	"github.com/fd1az/p2p-arbitrage/internal/monolith"
)

// Module implements the fiat bounded context.
type Module struct{}

// RegisterServices registers the rate provider with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, fiatDI.RateProvider, func(sr di.ServiceRegistry) app.RateProvider {
		cfg := monolith.Config(sr)
		log := monolith.Logger(sr)

		clientCfg := exchangeratehost.Config{
			BaseURL:            cfg.ExchangeRate.BaseURL,
			AccessKey:          cfg.ExchangeRate.AccessKey,
			Timeout:            cfg.ExchangeRate.Timeout,
			InsecureSkipVerify: cfg.HTTP.InsecureSkipVerify,
		}
		if cfg.CircuitBreaker.Enabled {
			cb := circuitbreaker.DefaultConfig("exchange-rate")
			cb.ConsecutiveFailures = cfg.CircuitBreaker.MaxFailures
			cb.Timeout = cfg.CircuitBreaker.OpenTimeout
			clientCfg.Breaker = &cb
		}

		client, err := exchangeratehost.NewClient(clientCfg, log)
		if err != nil {
			panic("failed to create exchange rate client: " + err.Error())
		}
		return client
	})

	return nil
}

// Startup registers the readiness check for the rate provider.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	provider := fiatDI.GetRateProvider(mono.Services())

	if b, ok := provider.(interface {
		BreakerState() (gobreaker.State, bool)
	}); ok {
		mono.Health().RegisterCheck("exchange_rate", func(ctx context.Context) (bool, string) {
			state, enabled := b.BreakerState()
			if !enabled {
				return true, "circuit breaker disabled"
			}
			return state != gobreaker.StateOpen, fmt.Sprintf("circuit breaker %s", state)
		})
	}

	mono.Logger().Info(ctx, "fiat module started", "base_url", mono.Config().ExchangeRate.BaseURL)
	return nil
}
