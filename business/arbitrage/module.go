// Package arbitrage implements the arbitrage bounded context: the
// buy-then-sell calculation over the fiat and p2p contexts.
package arbitrage

import (
	"context"

	"github.com/fd1az/p2p-arbitrage/business/arbitrage/app"
	arbitrageDI "github.com/fd1az/p2p-arbitrage/business/arbitrage/di"
	"github.com/fd1az/p2p-arbitrage/business/arbitrage/infra/httpapi"
	fiatDI "github.com/fd1az/p2p-arbitrage/business/fiat/di"
	p2pDI "github.com/fd1az/p2p-arbitrage/business/p2p/di"
	"github.com/fd1az/p2p-arbitrage/internal/di"
	"github.com/fd1az/p2p-arbitrage/internal/monolith"
)

// Module implements the arbitrage bounded context.
type Module struct{}

// RegisterServices registers the calculator and its HTTP handler. Requires
// the fiat and p2p modules to be registered on the same container.
func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, arbitrageDI.Calculator, func(sr di.ServiceRegistry) *app.Calculator {
		calc, err := app.NewCalculator(
			fiatDI.GetRateProvider(sr),
			p2pDI.GetMarketProvider(sr),
			monolith.Logger(sr),
		)
		if err != nil {
			panic("failed to create arbitrage calculator: " + err.Error())
		}
		return calc
	})

	di.RegisterToken(c, arbitrageDI.Handler, func(sr di.ServiceRegistry) *httpapi.Handler {
		cfg := monolith.Config(sr)
		defaults := httpapi.Defaults{
			Asset:             cfg.Defaults.Asset,
			BuyCurrency:       cfg.Defaults.BuyCurrency,
			SellCurrency:      cfg.Defaults.SellCurrency,
			Amount:            cfg.Defaults.AmountDecimal(),
			PaymentMethodBuy:  cfg.Defaults.PaymentMethodBuy,
			PaymentMethodSell: cfg.Defaults.PaymentMethodSell,
		}
		return httpapi.NewHandler(arbitrageDI.GetCalculator(sr), defaults, cfg.Server.ErrorStatus, monolith.Logger(sr))
	})

	return nil
}

// Startup mounts the calculation routes on the shared router.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	arbitrageDI.GetHandler(mono.Services()).Register(mono.Mux())

	d := mono.Config().Defaults
	mono.Logger().Info(ctx, "arbitrage module started",
		"default_asset", d.Asset,
		"default_pair", d.BuyCurrency+"/"+d.SellCurrency,
	)
	return nil
}
