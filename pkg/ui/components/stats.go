package components

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Stats holds session statistics for display.
type Stats struct {
	Calculations int64
	Profitable   int64
	Errors       int64
	TotalLatency time.Duration
}

// AvgLatencyMs returns the mean calculation latency in milliseconds.
func (s Stats) AvgLatencyMs() float64 {
	if s.Calculations == 0 {
		return 0
	}
	return float64(s.TotalLatency.Milliseconds()) / float64(s.Calculations)
}

// StatsComponent renders statistics.
type StatsComponent struct {
	stats Stats
}

// NewStatsComponent creates a new stats component.
func NewStatsComponent() *StatsComponent {
	return &StatsComponent{}
}

// Record adds one calculation to the totals.
func (s *StatsComponent) Record(failed, profitable bool, latency time.Duration) {
	s.stats.Calculations++
	s.stats.TotalLatency += latency
	switch {
	case failed:
		s.stats.Errors++
	case profitable:
		s.stats.Profitable++
	}
}

// Stats returns the current totals.
func (s *StatsComponent) Stats() Stats {
	return s.stats
}

// View renders the stats component.
func (s *StatsComponent) View() string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Bold(true)
	errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true)

	profitableRate := float64(0)
	if s.stats.Calculations > 0 {
		profitableRate = float64(s.stats.Profitable) / float64(s.stats.Calculations) * 100
	}

	errorsDisplay := valueStyle.Render(fmt.Sprintf("%d", s.stats.Errors))
	if s.stats.Errors > 0 {
		errorsDisplay = errorStyle.Render(fmt.Sprintf("%d", s.stats.Errors))
	}

	return style.Render("STATS") + "\n" +
		fmt.Sprintf("Calculations: %s  │  Profitable: %s (%.1f%%)  │  Errors: %s  │  Avg latency: %s",
			valueStyle.Render(fmt.Sprintf("%d", s.stats.Calculations)),
			valueStyle.Render(fmt.Sprintf("%d", s.stats.Profitable)),
			profitableRate,
			errorsDisplay,
			valueStyle.Render(fmt.Sprintf("%.0fms", s.stats.AvgLatencyMs())),
		)
}
