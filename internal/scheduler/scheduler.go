// Package scheduler fires refresh and load-more cycles from the timer and from
// on-demand triggers.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/polyinsider/whalewatch/internal/feed"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Runner executes cycles. *feed.Feed satisfies it.
type Runner interface {
	Refresh(ctx context.Context, trigger feed.Trigger) (feed.RefreshResult, error)
	LoadMore(ctx context.Context) feed.LoadMoreResult
}

// Handler receives cycle outcomes. *notify.Presenter satisfies it.
type Handler interface {
	HandleRefresh(res feed.RefreshResult, err error)
	HandleLoadMore(res feed.LoadMoreResult)
}

// Scheduler manages the recurring refresh and on-demand cycles.
type Scheduler struct {
	cron     *cron.Cron
	runner   Runner
	handler  Handler
	interval time.Duration
	log      zerolog.Logger

	ctx context.Context
	wg  sync.WaitGroup
}

// New creates a new scheduler
func New(runner Runner, handler Handler, interval time.Duration, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		runner:   runner,
		handler:  handler,
		interval: interval,
		log:      log.With().Str("component", "scheduler").Logger(),
		ctx:      context.Background(),
	}
}

// Start registers the recurring refresh, starts the schedule and runs one
// refresh immediately. Cycles started later use ctx.
func (s *Scheduler) Start(ctx context.Context) error {
	s.ctx = ctx

	schedule := fmt.Sprintf("@every %s", s.interval)
	if _, err := s.cron.AddFunc(schedule, func() {
		s.runRefresh(feed.TriggerTimer)
	}); err != nil {
		return fmt.Errorf("register refresh schedule: %w", err)
	}

	s.cron.Start()
	s.log.Info().Str("schedule", schedule).Msg("scheduler_started")

	s.Trigger(feed.TriggerTimer)
	return nil
}

// Stop stops the schedule and waits for running cycles to return.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.wg.Wait()
	s.log.Info().Msg("scheduler_stopped")
}

// Trigger runs a refresh of the given kind in the background.
func (s *Scheduler) Trigger(kind feed.Trigger) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.runRefresh(kind)
	}()
}

// LoadMore runs a load-more cycle in the background.
func (s *Scheduler) LoadMore() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		res := s.runner.LoadMore(s.ctx)
		if s.ctx.Err() != nil {
			return
		}
		s.handler.HandleLoadMore(res)
	}()
}

// runRefresh runs one refresh and hands the outcome to the handler. A failed
// cycle is reported but never stops the schedule.
func (s *Scheduler) runRefresh(kind feed.Trigger) {
	s.log.Debug().Str("trigger", kind.String()).Msg("refresh_triggered")

	res, err := s.runner.Refresh(s.ctx, kind)
	if s.ctx.Err() != nil {
		// shutting down; the consuming surface is gone
		return
	}
	if err != nil {
		s.log.Error().Err(err).Str("trigger", kind.String()).Msg("refresh_cycle_failed")
	}
	s.handler.HandleRefresh(res, err)
}
