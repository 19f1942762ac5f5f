// Package metrics provides cycle metrics for the status panel and Prometheus.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Cycle names used as metric labels.
const (
	CycleRefresh  = "refresh"
	CycleLoadMore = "load_more"
)

// Snapshot is a point-in-time view of metrics.
type Snapshot struct {
	RefreshesByTrigger map[string]int64
	RefreshFailures    int64
	LoadMores          int64
	LoadMoreFailures   int64
	TradesFetched      int64
	NewAlerts          int64
	StoreSize          int
	Offset             int
	LastSuccess        time.Time
	LastError          string
	StreamStatus       string
	Uptime             time.Duration
}

// Tracker records cycle outcomes. A nil *Tracker is valid and records nothing.
type Tracker struct {
	mu                 sync.RWMutex
	refreshesByTrigger map[string]int64
	refreshFailures    int64
	loadMores          int64
	loadMoreFailures   int64
	tradesFetched      int64
	newAlerts          int64
	storeSize          int
	offset             int
	lastSuccess        time.Time
	lastError          string
	streamStatus       string
	startTime          time.Time

	cycles        *prometheus.CounterVec
	failures      *prometheus.CounterVec
	fetched       *prometheus.CounterVec
	found         *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	storeAlerts   prometheus.Gauge
	oldestOffset  prometheus.Gauge
	lastSuccessTS prometheus.Gauge
}

// NewTracker creates a Tracker. Collectors are registered with reg when it is
// non-nil; with a nil registry they still count but are never exported.
func NewTracker(reg prometheus.Registerer) *Tracker {
	factory := promauto.With(reg)

	return &Tracker{
		refreshesByTrigger: make(map[string]int64),
		streamStatus:       "off",
		startTime:          time.Now(),

		cycles: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "whalewatch_cycles_total",
			Help: "Completed fetch cycles",
		}, []string{"cycle", "trigger"}),
		failures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "whalewatch_cycle_failures_total",
			Help: "Fetch cycles that ended in an upstream error",
		}, []string{"cycle"}),
		fetched: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "whalewatch_trades_fetched_total",
			Help: "Raw trades returned by the upstream feed",
		}, []string{"cycle"}),
		found: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "whalewatch_new_alerts_total",
			Help: "Whale alerts merged for the first time",
		}, []string{"cycle"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "whalewatch_cycle_duration_seconds",
			Help:    "Duration of fetch cycles in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"cycle"}),
		storeAlerts: factory.NewGauge(prometheus.GaugeOpts{
			Name: "whalewatch_store_alerts",
			Help: "Alerts held in the session accumulator",
		}),
		oldestOffset: factory.NewGauge(prometheus.GaugeOpts{
			Name: "whalewatch_oldest_offset",
			Help: "Oldest feed offset fetched by load-more",
		}),
		lastSuccessTS: factory.NewGauge(prometheus.GaugeOpts{
			Name: "whalewatch_last_refresh_success_timestamp_seconds",
			Help: "Unix time of the last successful refresh",
		}),
	}
}

// RecordRefresh records a successful refresh cycle.
func (t *Tracker) RecordRefresh(trigger string, fetched, newCount int, took time.Duration, completedAt time.Time) {
	if t == nil {
		return
	}
	t.mu.Lock()
	t.refreshesByTrigger[trigger]++
	t.tradesFetched += int64(fetched)
	t.newAlerts += int64(newCount)
	t.lastSuccess = completedAt
	t.mu.Unlock()

	t.cycles.WithLabelValues(CycleRefresh, trigger).Inc()
	t.fetched.WithLabelValues(CycleRefresh).Add(float64(fetched))
	t.found.WithLabelValues(CycleRefresh).Add(float64(newCount))
	t.duration.WithLabelValues(CycleRefresh).Observe(took.Seconds())
	t.lastSuccessTS.Set(float64(completedAt.Unix()))
}

// RecordRefreshFailure records a refresh cycle that failed to fetch.
func (t *Tracker) RecordRefreshFailure(trigger string, err error) {
	if t == nil {
		return
	}
	t.mu.Lock()
	t.refreshFailures++
	t.lastError = err.Error()
	t.mu.Unlock()

	t.failures.WithLabelValues(CycleRefresh).Inc()
}

// RecordLoadMore records a completed load-more cycle.
func (t *Tracker) RecordLoadMore(fetched, found int, took time.Duration) {
	if t == nil {
		return
	}
	t.mu.Lock()
	t.loadMores++
	t.tradesFetched += int64(fetched)
	t.newAlerts += int64(found)
	t.mu.Unlock()

	t.cycles.WithLabelValues(CycleLoadMore, "manual").Inc()
	t.fetched.WithLabelValues(CycleLoadMore).Add(float64(fetched))
	t.found.WithLabelValues(CycleLoadMore).Add(float64(found))
	t.duration.WithLabelValues(CycleLoadMore).Observe(took.Seconds())
}

// RecordLoadMoreFailure records a load-more cycle whose fetch failed.
func (t *Tracker) RecordLoadMoreFailure(err error) {
	if t == nil {
		return
	}
	t.mu.Lock()
	t.loadMoreFailures++
	t.lastError = err.Error()
	t.mu.Unlock()

	t.failures.WithLabelValues(CycleLoadMore).Inc()
}

// SetStore records the accumulator size and offset cursor.
func (t *Tracker) SetStore(size, offset int) {
	if t == nil {
		return
	}
	t.mu.Lock()
	t.storeSize = size
	t.offset = offset
	t.mu.Unlock()

	t.storeAlerts.Set(float64(size))
	t.oldestOffset.Set(float64(offset))
}

// SetStreamStatus sets the stream nudge connection status.
func (t *Tracker) SetStreamStatus(status string) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.streamStatus = status
}

// Snapshot returns a point-in-time snapshot of metrics.
func (t *Tracker) Snapshot() Snapshot {
	if t == nil {
		return Snapshot{RefreshesByTrigger: map[string]int64{}}
	}
	t.mu.RLock()
	defer t.mu.RUnlock()

	byTrigger := make(map[string]int64, len(t.refreshesByTrigger))
	for k, v := range t.refreshesByTrigger {
		byTrigger[k] = v
	}

	return Snapshot{
		RefreshesByTrigger: byTrigger,
		RefreshFailures:    t.refreshFailures,
		LoadMores:          t.loadMores,
		LoadMoreFailures:   t.loadMoreFailures,
		TradesFetched:      t.tradesFetched,
		NewAlerts:          t.newAlerts,
		StoreSize:          t.storeSize,
		Offset:             t.offset,
		LastSuccess:        t.lastSuccess,
		LastError:          t.lastError,
		StreamStatus:       t.streamStatus,
		Uptime:             time.Since(t.startTime),
	}
}
