package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/polyinsider/whalewatch/internal/notify"
	"github.com/polyinsider/whalewatch/internal/store"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogSinkLogsEachAlertOnce(t *testing.T) {
	var buf bytes.Buffer
	sink := newLogSink(zerolog.New(&buf))

	now := time.Now()
	first := store.Alert{ID: "a", Side: store.SideBuy, Value: 5000, Timestamp: now}
	second := store.Alert{ID: "b", Side: store.SideSell, Value: 2500, Timestamp: now.Add(time.Second)}

	sink.ShowAlerts([]store.Alert{first}, now)
	sink.ShowAlerts([]store.Alert{second, first}, now)

	assert.Equal(t, 2, strings.Count(buf.String(), `"message":"whale_trade"`))
}

func TestLogSinkNoticeLevels(t *testing.T) {
	var buf bytes.Buffer
	sink := newLogSink(zerolog.New(&buf))

	sink.ShowNotice(notify.Notice{Level: notify.LevelWarning, Title: "Refresh failed", Message: "timeout"})
	sink.ShowNotice(notify.Notice{Level: notify.LevelSuccess, Title: "Refreshed", Message: "Found 2 new whale trades"})

	out := buf.String()
	assert.Contains(t, out, `"level":"warn"`)
	assert.Contains(t, out, `"message":"Found 2 new whale trades"`)
}

func TestSetupLoggerWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "whalewatch.log")

	logger, closeLog, err := setupLogger("debug", path)
	require.NoError(t, err)
	logger.Debug().Msg("hello_file")
	closeLog()

	assert.FileExists(t, path)
}

func TestSetupLoggerFallsBackToInfo(t *testing.T) {
	logger, closeLog, err := setupLogger("nonsense", "")
	require.NoError(t, err)
	defer closeLog()

	assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())
}
