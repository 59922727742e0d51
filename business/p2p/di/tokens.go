// Package di contains dependency injection tokens for the p2p context.
package di

import (
	"github.com/fd1az/p2p-arbitrage/business/p2p/app"
	"github.com/fd1az/p2p-arbitrage/internal/di"
)

// Public service tokens - exposed to other modules
var (
	MarketProvider = di.NewToken[app.MarketProvider]("p2p.MarketProvider")
)

func GetMarketProvider(c di.ServiceRegistry) app.MarketProvider {
	return di.GetToken(c, MarketProvider)
}
