// Package di contains dependency injection tokens for the fiat context.
package di

import (
	"github.com/fd1az/p2p-arbitrage/business/fiat/app"
	"github.com/fd1az/p2p-arbitrage/internal/di"
)

var (
	RateProvider = di.NewToken[app.RateProvider]("fiat.RateProvider")
)

func GetRateProvider(c di.ServiceRegistry) app.RateProvider {
	return di.GetToken(c, RateProvider)
}
