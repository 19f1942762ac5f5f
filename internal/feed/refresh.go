package feed

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/polyinsider/whalewatch/internal/store"
)

// RefreshResult is the outcome of a refresh cycle as seen by one caller.
type RefreshResult struct {
	Trigger     Trigger
	Alerts      []store.Alert
	NewCount    int
	CompletedAt time.Time
	// Shared is set when this caller joined a cycle another trigger started.
	Shared bool
}

type refreshOutcome struct {
	alerts      []store.Alert
	newCount    int
	completedAt time.Time
}

// Refresh fetches the newest page, merges whale trades and returns the full
// sorted view together with how many alerts were new.
//
// Concurrent calls share one upstream fetch. The fetch itself is detached from
// ctx: a caller that gives up stops waiting, but the cycle still completes and
// its merges land in the store. Errors leave the store as it was after the
// last merged item.
func (f *Feed) Refresh(ctx context.Context, trigger Trigger) (RefreshResult, error) {
	ch := f.refreshGroup.DoChan("refresh", func() (interface{}, error) {
		return f.runRefresh(context.WithoutCancel(ctx), trigger)
	})

	select {
	case <-ctx.Done():
		return RefreshResult{Trigger: trigger}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return RefreshResult{Trigger: trigger}, res.Err
		}
		out := res.Val.(refreshOutcome)
		return RefreshResult{
			Trigger:     trigger,
			Alerts:      out.alerts,
			NewCount:    out.newCount,
			CompletedAt: out.completedAt,
			Shared:      res.Shared,
		}, nil
	}
}

func (f *Feed) runRefresh(ctx context.Context, trigger Trigger) (refreshOutcome, error) {
	log := f.log.With().
		Str("cycle_id", uuid.NewString()).
		Str("trigger", trigger.String()).
		Logger()

	start := f.now()
	trades, err := f.fetcher.Fetch(ctx, f.pageSize, 0)
	if err != nil {
		log.Warn().Err(err).Msg("refresh_failed")
		f.tracker.RecordRefreshFailure(trigger.String(), err)
		return refreshOutcome{}, fmt.Errorf("refresh fetch: %w", err)
	}

	added := f.mergePage(trades)
	snapshot := f.store.Snapshot()
	completedAt := f.now()

	f.mu.Lock()
	f.lastSuccess = completedAt
	f.mu.Unlock()

	f.tracker.RecordRefresh(trigger.String(), len(trades), added, completedAt.Sub(start), completedAt)
	log.Info().
		Int("fetched", len(trades)).
		Int("new", added).
		Int("total", len(snapshot)).
		Msg("refresh_completed")

	if added > 0 {
		f.notify(snapshot)
	}

	return refreshOutcome{
		alerts:      snapshot,
		newCount:    added,
		completedAt: completedAt,
	}, nil
}
