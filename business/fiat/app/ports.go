// Package app defines the ports of the fiat context.
package app

import (
	"context"

	"github.com/fd1az/p2p-arbitrage/business/fiat/domain"
)

// RateProvider returns the spot rate between two fiat currencies.
type RateProvider interface {
	GetRate(ctx context.Context, from, to string) (*domain.ExchangeRate, error)
}
