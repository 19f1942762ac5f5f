// Package feed runs the refresh and load-more cycles that pull trades from
// upstream, keep the whale-sized ones and merge them into the accumulator.
package feed

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/polyinsider/whalewatch/internal/metrics"
	"github.com/polyinsider/whalewatch/internal/store"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// DefaultPageSize is the number of trades requested per cycle.
const DefaultPageSize = 500

// Fetcher retrieves a page of the reverse-chronological trade feed.
type Fetcher interface {
	Fetch(ctx context.Context, limit, offset int) ([]store.RawTrade, error)
}

// Classifier turns a raw trade into an alert when it is whale-sized.
type Classifier interface {
	Classify(trade store.RawTrade) (store.Alert, bool)
}

// Feed owns the accumulator for a session and runs cycles against it.
type Feed struct {
	fetcher    Fetcher
	classifier Classifier
	store      *store.Accumulator
	pageSize   int
	tracker    *metrics.Tracker
	log        zerolog.Logger
	now        func() time.Time

	refreshGroup singleflight.Group
	loadingMore  atomic.Bool

	mu          sync.RWMutex
	lastSuccess time.Time
	subscribers []func([]store.Alert)
}

// Option configures a Feed.
type Option func(*Feed)

// WithPageSize overrides DefaultPageSize.
func WithPageSize(n int) Option {
	return func(f *Feed) {
		if n > 0 {
			f.pageSize = n
		}
	}
}

// WithTracker records cycle outcomes into tracker.
func WithTracker(tracker *metrics.Tracker) Option {
	return func(f *Feed) {
		f.tracker = tracker
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(f *Feed) {
		f.now = now
	}
}

// New creates a Feed around an accumulator the caller owns.
func New(fetcher Fetcher, classifier Classifier, acc *store.Accumulator, log zerolog.Logger, opts ...Option) *Feed {
	f := &Feed{
		fetcher:    fetcher,
		classifier: classifier,
		store:      acc,
		pageSize:   DefaultPageSize,
		log:        log.With().Str("component", "feed").Logger(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Snapshot returns the accumulated alerts, newest first.
func (f *Feed) Snapshot() []store.Alert {
	return f.store.Snapshot()
}

// Offset returns the oldest feed offset reached by load-more.
func (f *Feed) Offset() int {
	return f.store.Offset()
}

// LastSuccess returns when the last successful refresh completed.
func (f *Feed) LastSuccess() time.Time {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.lastSuccess
}

// Subscribe registers fn to be called with the new snapshot whenever a cycle
// adds alerts. fn runs on the cycle's goroutine.
func (f *Feed) Subscribe(fn func([]store.Alert)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subscribers = append(f.subscribers, fn)
}

func (f *Feed) notify(snapshot []store.Alert) {
	f.mu.RLock()
	subs := make([]func([]store.Alert), len(f.subscribers))
	copy(subs, f.subscribers)
	f.mu.RUnlock()

	for _, fn := range subs {
		fn(snapshot)
	}
}

// mergePage classifies and merges every trade in the page, returning how many
// alerts were inserted for the first time.
func (f *Feed) mergePage(trades []store.RawTrade) int {
	added := 0
	for _, trade := range trades {
		alert, ok := f.classifier.Classify(trade)
		if !ok {
			continue
		}
		if f.store.Merge(alert) {
			added++
		}
	}
	f.tracker.SetStore(f.store.Len(), f.store.Offset())
	return added
}
