package main

import (
	"sync"
	"time"

	"github.com/polyinsider/whalewatch/internal/notify"
	"github.com/polyinsider/whalewatch/internal/store"
	"github.com/rs/zerolog"
)

// logSink renders the feed as log lines when the terminal UI is disabled.
// Each alert is logged once, the first time it appears in a snapshot.
type logSink struct {
	log zerolog.Logger

	mu   sync.Mutex
	seen map[string]struct{}
}

func newLogSink(log zerolog.Logger) *logSink {
	return &logSink{
		log:  log.With().Str("component", "headless").Logger(),
		seen: make(map[string]struct{}),
	}
}

func (s *logSink) ShowAlerts(alerts []store.Alert, updatedAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := len(alerts) - 1; i >= 0; i-- {
		alert := alerts[i]
		if _, ok := s.seen[alert.ID]; ok {
			continue
		}
		s.seen[alert.ID] = struct{}{}

		s.log.Info().
			Str("side", alert.Side).
			Float64("value_usd", alert.Value).
			Float64("price", alert.Price).
			Str("outcome", alert.Outcome).
			Str("trader", alert.Trader()).
			Str("market", alert.MarketTitle).
			Time("traded_at", alert.Timestamp).
			Msg("whale_trade")
	}

	s.log.Debug().Int("total", len(alerts)).Time("updated_at", updatedAt).Msg("alerts_updated")
}

func (s *logSink) ShowNotice(n notify.Notice) {
	event := s.log.Info()
	if n.Level == notify.LevelWarning {
		event = s.log.Warn()
	}
	event.Str("title", n.Title).Msg(n.Message)
}
