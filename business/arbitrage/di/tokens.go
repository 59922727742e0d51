// Package di contains dependency injection tokens for the arbitrage context.
package di

import (
	"github.com/fd1az/p2p-arbitrage/business/arbitrage/app"
	"github.com/fd1az/p2p-arbitrage/business/arbitrage/infra/httpapi"
	"github.com/fd1az/p2p-arbitrage/internal/di"
)

// Public service tokens - exposed to other modules and the entry point
var (
	Calculator = di.NewToken[*app.Calculator]("arbitrage.Calculator")
	Handler    = di.NewToken[*httpapi.Handler]("arbitrage.Handler")
)

func GetCalculator(c di.ServiceRegistry) *app.Calculator {
	return di.GetToken(c, Calculator)
}

func GetHandler(c di.ServiceRegistry) *httpapi.Handler {
	return di.GetToken(c, Handler)
}
