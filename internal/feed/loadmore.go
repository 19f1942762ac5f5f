package feed

import (
	"context"

	"github.com/google/uuid"
)

// LoadMoreResult is the outcome of a load-more cycle.
type LoadMoreResult struct {
	// Found is the number of alerts merged for the first time.
	Found int
	// Fetched is the number of raw trades the page contained.
	Fetched int
	// Offset is the accumulator's offset cursor after the cycle.
	Offset int
	// Busy is set when the call was rejected because another load-more was in flight.
	Busy bool
}

// LoadMore extends the accumulator one page further back in time.
//
// Only one load-more runs at a time; a call made while another is in flight
// returns immediately with Found == 0 and Busy set, without touching the
// network. Fetch errors are logged and reported as Found == 0, the same as
// reaching the end of upstream retention. The cursor only advances when the
// page contained at least one trade.
func (f *Feed) LoadMore(ctx context.Context) LoadMoreResult {
	if !f.loadingMore.CompareAndSwap(false, true) {
		f.log.Debug().Msg("load_more_in_flight")
		return LoadMoreResult{Offset: f.store.Offset(), Busy: true}
	}
	defer f.loadingMore.Store(false)

	newOffset := f.store.Offset() + f.pageSize
	log := f.log.With().
		Str("cycle_id", uuid.NewString()).
		Int("offset", newOffset).
		Logger()

	start := f.now()
	trades, err := f.fetcher.Fetch(ctx, f.pageSize, newOffset)
	if err != nil {
		log.Warn().Err(err).Msg("load_more_failed")
		f.tracker.RecordLoadMoreFailure(err)
		return LoadMoreResult{Offset: f.store.Offset()}
	}

	found := f.mergePage(trades)
	if len(trades) > 0 {
		f.store.AdvanceOffset(newOffset)
		f.tracker.SetStore(f.store.Len(), f.store.Offset())
		f.notify(f.store.Snapshot())
	}

	f.tracker.RecordLoadMore(len(trades), found, f.now().Sub(start))
	log.Info().
		Int("fetched", len(trades)).
		Int("new", found).
		Bool("retention_boundary", len(trades) == 0).
		Msg("load_more_completed")

	return LoadMoreResult{
		Found:   found,
		Fetched: len(trades),
		Offset:  f.store.Offset(),
	}
}
