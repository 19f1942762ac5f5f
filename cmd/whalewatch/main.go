// Package main is the entry point for the whale trade watcher.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/polyinsider/whalewatch/internal/config"
	"github.com/polyinsider/whalewatch/internal/detector"
	"github.com/polyinsider/whalewatch/internal/feed"
	"github.com/polyinsider/whalewatch/internal/ingest"
	"github.com/polyinsider/whalewatch/internal/metrics"
	"github.com/polyinsider/whalewatch/internal/notify"
	"github.com/polyinsider/whalewatch/internal/scheduler"
	"github.com/polyinsider/whalewatch/internal/store"
	"github.com/polyinsider/whalewatch/internal/ui"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, closeLog, err := setupLogger(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open log file: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	logger.Info().
		Str("data_api_url", cfg.MaskedDataAPIURL()).
		Float64("min_value_usd", cfg.MinValueUSD).
		Int("page_size", cfg.PageSize).
		Dur("refresh_interval", cfg.RefreshInterval).
		Dur("fetch_timeout", cfg.FetchTimeout).
		Bool("stream_nudge", cfg.EnableStreamNudge).
		Bool("enable_tui", cfg.EnableTUI).
		Int("metrics_port", cfg.MetricsPort).
		Msg("config_loaded")

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	focusChan := make(chan os.Signal, 1)
	signal.Notify(focusChan, syscall.SIGCONT)

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	tracker := metrics.NewTracker(reg)

	// Feed pipeline
	acc := store.NewAccumulator()
	client := ingest.NewTradesClient(cfg.DataAPIURL, cfg.FetchTimeout, logger)
	classifier := detector.NewClassifier(cfg.MinValueUSD)
	whaleFeed := feed.New(client, classifier, acc, logger,
		feed.WithPageSize(cfg.PageSize),
		feed.WithTracker(tracker),
	)

	// Consuming surface
	var sched *scheduler.Scheduler
	var app *ui.App
	var sink notify.Sink
	if cfg.EnableTUI {
		app = ui.NewApp(ui.Actions{
			Refresh:  func(trigger feed.Trigger) { sched.Trigger(trigger) },
			LoadMore: func() { sched.LoadMore() },
		}, tracker, cfg.MinValueUSD)
		sink = app
	} else {
		sink = newLogSink(logger)
	}

	whaleFeed.Subscribe(func(alerts []store.Alert) {
		sink.ShowAlerts(alerts, whaleFeed.LastSuccess())
	})
	sched = scheduler.New(whaleFeed, notify.NewPresenter(sink), cfg.RefreshInterval, logger)

	if cfg.MetricsPort > 0 {
		go func() {
			if err := metrics.Serve(ctx, cfg.MetricsPort, reg, logger); err != nil {
				logger.Error().Err(err).Msg("metrics_listener_failed")
			}
		}()
	}

	var nudger *ingest.Nudger
	if cfg.EnableStreamNudge {
		nudger = startNudger(ctx, cfg, sched, tracker, logger)
	}

	if err := sched.Start(ctx); err != nil {
		logger.Error().Err(err).Msg("scheduler_start_failed")
		os.Exit(1)
	}

	logger.Info().
		Str("status", "watching for whales").
		Bool("tui_enabled", cfg.EnableTUI).
		Msg("whalewatch_started")

	// Focus trigger: resuming the process (fg after ctrl-z) means the feed is visible again
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-focusChan:
				sched.Trigger(feed.TriggerFocus)
			}
		}
	}()

	if app != nil {
		// Start TUI in goroutine so we can still handle signals
		appDone := make(chan struct{})
		go func() {
			defer close(appDone)
			if err := app.Run(); err != nil {
				logger.Error().Err(err).Msg("tui_error")
			}
		}()

		select {
		case sig := <-sigChan:
			logger.Info().Str("signal", sig.String()).Msg("shutdown_signal_received")
			app.Stop()
		case <-appDone:
			logger.Info().Msg("tui_closed")
		}
	} else {
		sig := <-sigChan
		logger.Info().Str("signal", sig.String()).Msg("shutdown_signal_received")
	}

	cancel()

	// Graceful shutdown
	logger.Info().Msg("shutting_down")
	if nudger != nil {
		nudger.Stop()
	}
	sched.Stop()
	signal.Stop(focusChan)

	logger.Info().Int("alerts", acc.Len()).Msg("shutdown_complete")
}

// startNudger subscribes to the most active markets and triggers an early
// refresh whenever a whale-sized execution shows up on the market channel.
func startNudger(ctx context.Context, cfg *config.Config, sched *scheduler.Scheduler, tracker *metrics.Tracker, logger zerolog.Logger) *ingest.Nudger {
	logger.Info().Int("limit", cfg.StreamMarketLimit).Msg("fetching_active_markets")
	markets, err := ingest.FetchActiveMarkets(ctx, cfg.GammaAPIURL, cfg.StreamMarketLimit)
	if err != nil {
		logger.Warn().Err(err).Msg("active_markets_unavailable")
		tracker.SetStreamStatus("unavailable")
		return nil
	}

	tokenIDs := ingest.ExtractTokenIDs(markets, logger)
	if len(tokenIDs) == 0 {
		logger.Warn().Msg("no_stream_tokens")
		tracker.SetStreamStatus("unavailable")
		return nil
	}

	nudger := ingest.NewNudger(cfg.PolymarketWSURL, tokenIDs, cfg.MinValueUSD, cfg.StreamNudgeGap, func() {
		sched.Trigger(feed.TriggerStream)
	}, logger)
	nudger.OnStatus(tracker.SetStreamStatus)
	nudger.Start(ctx)

	logger.Info().Int("subscribed_tokens", len(tokenIDs)).Msg("stream_nudge_started")
	return nudger
}

// setupLogger creates a console logger at the given level. When path is set,
// output goes to that file so it does not tear the terminal UI.
// Format: 2025-01-04 14:32:01 INF message key=value
func setupLogger(levelStr, path string) (zerolog.Logger, func(), error) {
	level, err := zerolog.ParseLevel(levelStr)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	var out io.Writer = os.Stdout
	closeFn := func() {}
	noColor := false
	if path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return zerolog.Nop(), closeFn, err
		}
		out = f
		closeFn = func() { _ = f.Close() }
		noColor = true
	}

	writer := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: "2006-01-02 15:04:05",
		NoColor:    noColor,
	}
	logger := zerolog.New(writer).Level(level).With().Timestamp().Logger()
	return logger, closeFn, nil
}
