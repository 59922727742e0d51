package ui

import (
	"time"

	"github.com/fd1az/p2p-arbitrage/business/arbitrage/domain"
)

// Message types for TUI updates

// CalculatedMsg carries the outcome of one calculation.
type CalculatedMsg struct {
	Request  domain.Request
	Outcome  domain.Outcome
	Duration time.Duration
}

// TickMsg is sent periodically while the welcome screen is animating.
type TickMsg struct{}
