package ui

import (
	"fmt"
	"time"

	"github.com/polyinsider/whalewatch/internal/metrics"
	"github.com/rivo/tview"
)

// StatusView displays feed health and cycle counters.
type StatusView struct {
	textView *tview.TextView
	minValue float64
}

// NewStatusView creates a new status view.
func NewStatusView(minValue float64) *StatusView {
	textView := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(false)

	textView.SetTitle(" Status ").SetBorder(true)

	return &StatusView{
		textView: textView,
		minValue: minValue,
	}
}

// Widget returns the tview primitive.
func (v *StatusView) Widget() tview.Primitive {
	return v.textView
}

// Update refreshes the status display.
func (v *StatusView) Update(snapshot metrics.Snapshot) {
	v.textView.Clear()
	fmt.Fprint(v.textView, renderStatus(snapshot, v.minValue, time.Now()))
}

func renderStatus(s metrics.Snapshot, minValue float64, now time.Time) string {
	updated := "[red]never[-]"
	if !s.LastSuccess.IsZero() {
		updated = formatTimeAgo(s.LastSuccess, now)
	}

	lastErr := "-"
	if s.LastError != "" {
		lastErr = truncateText(s.LastError, 40)
	}

	return fmt.Sprintf(`[yellow]Feed[-]
Updated: %s
Threshold: %s
Uptime: %s
Stream: %s

[yellow]Store[-]
Whales: %d
Oldest offset: %d

[yellow]Cycles[-]
Timer: %d  Focus: %d
Manual: %d  Stream: %d
Load more: %d
Failures: %d / %d
Trades fetched: %d
Last error: %s
`,
		updated,
		formatUSD(minValue),
		formatDuration(s.Uptime),
		s.StreamStatus,
		s.StoreSize,
		s.Offset,
		s.RefreshesByTrigger["timer"],
		s.RefreshesByTrigger["focus"],
		s.RefreshesByTrigger["manual"],
		s.RefreshesByTrigger["stream"],
		s.LoadMores,
		s.RefreshFailures,
		s.LoadMoreFailures,
		s.TradesFetched,
		lastErr,
	)
}

// formatDuration formats a duration in human-readable form.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.0fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%.0fm", d.Minutes())
	}
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh %dm", hours, minutes)
}

// formatTimeAgo formats a time as "X ago".
func formatTimeAgo(t, now time.Time) string {
	elapsed := now.Sub(t)

	if elapsed < time.Minute {
		return fmt.Sprintf("%.0fs ago", elapsed.Seconds())
	}
	if elapsed < time.Hour {
		return fmt.Sprintf("%.0fm ago", elapsed.Minutes())
	}
	return fmt.Sprintf("%.0fh ago", elapsed.Hours())
}
