// Package app defines the ports of the P2P market context.
package app

import (
	"context"

	"github.com/fd1az/p2p-arbitrage/business/p2p/domain"
)

// MarketProvider searches a P2P order book. The returned slice keeps the
// provider's ranking; callers must not reorder it before selection.
type MarketProvider interface {
	Search(ctx context.Context, query domain.SearchQuery) ([]domain.Advertisement, error)
}
