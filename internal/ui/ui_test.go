package ui

import (
	"testing"
	"time"

	"github.com/polyinsider/whalewatch/internal/metrics"
	"github.com/polyinsider/whalewatch/internal/notify"
	"github.com/polyinsider/whalewatch/internal/store"
	"github.com/stretchr/testify/assert"
)

func TestFormatUSD(t *testing.T) {
	cases := map[float64]string{
		0:         "$0",
		999.4:     "$999",
		1000:      "$1,000",
		12345.6:   "$12,346",
		1234567.0: "$1,234,567",
	}
	for in, want := range cases {
		assert.Equal(t, want, formatUSD(in), "formatUSD(%v)", in)
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "0xabc", truncateAddress("0xabc"))
	assert.Equal(t, "0x1234...cdef", truncateAddress("0x1234567890abcdef"))

	assert.Equal(t, "short", truncateText("short", 10))
	assert.Equal(t, "Will it...", truncateText("Will it rain tomorrow", 10))
}

func TestTraderLabel(t *testing.T) {
	named := store.Alert{Address: "0x1234567890abcdef", DisplayName: "whale"}
	anon := store.Alert{Address: "0x1234567890abcdef"}

	assert.Equal(t, "whale", traderLabel(named))
	assert.Equal(t, "0x1234...cdef", traderLabel(anon))
}

func TestFormatNotice(t *testing.T) {
	at := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	mainText, secondary := formatNotice(notify.Notice{
		Level:   notify.LevelWarning,
		Title:   "Refresh failed",
		Message: "upstream down",
		At:      at,
	})

	assert.Contains(t, mainText, "Refresh failed")
	assert.Contains(t, mainText, "[yellow]")
	assert.Equal(t, "upstream down", secondary)
}

func TestRenderStatus(t *testing.T) {
	now := time.Now()
	out := renderStatus(metrics.Snapshot{
		RefreshesByTrigger: map[string]int64{"timer": 4, "manual": 1},
		StoreSize:          12,
		Offset:             500,
		LastSuccess:        now.Add(-30 * time.Second),
		StreamStatus:       "off",
		Uptime:             90 * time.Minute,
	}, 1000, now)

	assert.Contains(t, out, "Updated: 30s ago")
	assert.Contains(t, out, "Threshold: $1,000")
	assert.Contains(t, out, "Uptime: 1h 30m")
	assert.Contains(t, out, "Whales: 12")
	assert.Contains(t, out, "Oldest offset: 500")
	assert.Contains(t, out, "Timer: 4")
	assert.Contains(t, out, "Manual: 1")
}

func TestRenderStatusNeverUpdated(t *testing.T) {
	out := renderStatus(metrics.Snapshot{RefreshesByTrigger: map[string]int64{}}, 1000, time.Now())
	assert.Contains(t, out, "never")
}
