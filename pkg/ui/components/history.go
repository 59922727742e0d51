package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// HistoryRow is one past calculation.
type HistoryRow struct {
	Time     string
	Route    string
	Amount   string
	Profit   decimal.Decimal
	Currency string
	Code     string
	Failed   bool
}

// HistoryComponent renders recent calculations, newest first.
type HistoryComponent struct {
	rows    []HistoryRow
	maxRows int
}

// NewHistoryComponent creates a history list holding up to maxRows rows.
func NewHistoryComponent(maxRows int) *HistoryComponent {
	return &HistoryComponent{
		rows:    make([]HistoryRow, 0),
		maxRows: maxRows,
	}
}

// Add prepends a row, dropping the oldest beyond maxRows.
func (h *HistoryComponent) Add(row HistoryRow) {
	h.rows = append([]HistoryRow{row}, h.rows...)
	if len(h.rows) > h.maxRows {
		h.rows = h.rows[:h.maxRows]
	}
}

// Clear clears the history.
func (h *HistoryComponent) Clear() {
	h.rows = make([]HistoryRow, 0)
}

// Len returns the number of rows.
func (h *HistoryComponent) Len() int {
	return len(h.rows)
}

// View renders the history component.
func (h *HistoryComponent) View() string {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	if len(h.rows) == 0 {
		return headerStyle.Render("HISTORY") + "\n\nNo calculations yet..."
	}

	profitableStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	unprofitableStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
	failedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))

	result := headerStyle.Render(fmt.Sprintf("HISTORY (last %d)", h.maxRows)) + "\n"
	result += "┌──────────┬────────────────┬────────────┬─────────────────────────┐\n"
	result += "│   Time   │     Route      │   Amount   │         Outcome         │\n"
	result += "├──────────┼────────────────┼────────────┼─────────────────────────┤\n"

	for _, row := range h.rows {
		var outcome string
		switch {
		case row.Failed:
			outcome = failedStyle.Render(fmt.Sprintf("✗ %-22s", truncate(row.Code, 22)))
		case row.Profit.IsPositive():
			outcome = profitableStyle.Render(fmt.Sprintf("✓ %-22s", row.Profit.StringFixed(2)+" "+row.Currency))
		default:
			outcome = unprofitableStyle.Render(fmt.Sprintf("✗ %-22s", row.Profit.StringFixed(2)+" "+row.Currency))
		}

		result += fmt.Sprintf("│ %8s │ %-14s │ %10s │ %s│\n",
			row.Time,
			truncate(row.Route, 14),
			truncate(row.Amount, 10),
			outcome,
		)
	}

	result += "└──────────┴────────────────┴────────────┴─────────────────────────┘"

	return result
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
