// Package p2p implements the P2P market bounded context: order book search
// and advertisement selection.
package p2p

import (
	"context"
	"fmt"

	"github.com/sony/gobreaker/v2"

	"github.com/fd1az/p2p-arbitrage/business/p2p/app"
	p2pDI "github.com/fd1az/p2p-arbitrage/business/p2p/di"
	"github.com/fd1az/p2p-arbitrage/business/p2p/infra/binance"
	"github.com/fd1az/p2p-arbitrage/internal/circuitbreaker"
	"github.com/fd1az/p2p-arbitrage/internal/di"
	"github.com/fd1az/p2p-arbitrage/internal/monolith"
)

// Module implements the p2p bounded context.
type Module struct{}

// RegisterServices registers the market provider with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, p2pDI.MarketProvider, func(sr di.ServiceRegistry) app.MarketProvider {
		cfg := monolith.Config(sr)
		log := monolith.Logger(sr)

		clientCfg := binance.Config{
			BaseURL:            cfg.P2P.BaseURL,
			Rows:               cfg.P2P.Rows,
			Timeout:            cfg.P2P.Timeout,
			InsecureSkipVerify: cfg.HTTP.InsecureSkipVerify,
		}
		if cfg.CircuitBreaker.Enabled {
			cb := circuitbreaker.DefaultConfig("binance-p2p")
			cb.ConsecutiveFailures = cfg.CircuitBreaker.MaxFailures
			cb.Timeout = cfg.CircuitBreaker.OpenTimeout
			clientCfg.Breaker = &cb
		}

		client, err := binance.NewClient(clientCfg, log)
		if err != nil {
			panic("failed to create binance p2p client: " + err.Error())
		}
		return client
	})

	return nil
}

// Startup resolves the provider and registers its readiness check.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	provider := p2pDI.GetMarketProvider(mono.Services())

	if b, ok := provider.(interface {
		BreakerState() (gobreaker.State, bool)
	}); ok {
		mono.Health().RegisterCheck("binance_p2p", func(ctx context.Context) (bool, string) {
			state, enabled := b.BreakerState()
			if !enabled {
				return true, "circuit breaker disabled"
			}
			return state != gobreaker.StateOpen, fmt.Sprintf("circuit breaker %s", state)
		})
	}

	mono.Logger().Info(ctx, "p2p module started", "base_url", mono.Config().P2P.BaseURL)
	return nil
}
