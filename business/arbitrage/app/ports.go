// Package app contains the arbitrage application services.
package app

import (
	"context"

	"github.com/fd1az/p2p-arbitrage/business/arbitrage/domain"
)

// Reporter renders a calculation outcome for a user-facing surface.
type Reporter interface {
	Report(ctx context.Context, req domain.Request, outcome domain.Outcome) error
}

// Service is the application entry point shared by the HTTP, CLI and TUI
// surfaces.
type Service interface {
	Calculate(ctx context.Context, req domain.Request) domain.Outcome
}
