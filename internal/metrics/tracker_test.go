package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackerCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	tr := NewTracker(reg)

	done := time.Unix(1760000000, 0)
	tr.RecordRefresh("timer", 500, 12, time.Second, done)
	tr.RecordRefresh("manual", 500, 0, time.Second, done.Add(time.Minute))
	tr.RecordRefreshFailure("timer", errors.New("upstream down"))
	tr.RecordLoadMore(500, 7, time.Second)
	tr.RecordLoadMoreFailure(errors.New("timeout"))
	tr.SetStore(19, 500)

	snap := tr.Snapshot()
	assert.Equal(t, int64(1), snap.RefreshesByTrigger["timer"])
	assert.Equal(t, int64(1), snap.RefreshesByTrigger["manual"])
	assert.Equal(t, int64(1), snap.RefreshFailures)
	assert.Equal(t, int64(1), snap.LoadMores)
	assert.Equal(t, int64(1), snap.LoadMoreFailures)
	assert.Equal(t, int64(1500), snap.TradesFetched)
	assert.Equal(t, int64(19), snap.NewAlerts)
	assert.Equal(t, 19, snap.StoreSize)
	assert.Equal(t, 500, snap.Offset)
	assert.Equal(t, done.Add(time.Minute), snap.LastSuccess)
	assert.Equal(t, "timeout", snap.LastError)

	assert.Equal(t, 1.0, testutil.ToFloat64(tr.cycles.WithLabelValues(CycleRefresh, "timer")))
	assert.Equal(t, 12.0, testutil.ToFloat64(tr.found.WithLabelValues(CycleRefresh)))
	assert.Equal(t, 19.0, testutil.ToFloat64(tr.storeAlerts))
}

func TestNilTrackerIsSafe(t *testing.T) {
	var tr *Tracker
	tr.RecordRefresh("timer", 1, 1, time.Second, time.Now())
	tr.RecordRefreshFailure("timer", errors.New("x"))
	tr.RecordLoadMore(1, 1, time.Second)
	tr.RecordLoadMoreFailure(errors.New("x"))
	tr.SetStore(1, 1)
	tr.SetStreamStatus("connected")

	assert.NotNil(t, tr.Snapshot().RefreshesByTrigger)
}

func TestTrackerWithoutRegistry(t *testing.T) {
	// Two unregistered trackers must not collide on metric names
	a := NewTracker(nil)
	b := NewTracker(nil)
	a.SetStore(1, 0)
	b.SetStore(2, 0)
	assert.Equal(t, 1, a.Snapshot().StoreSize)
	assert.Equal(t, 2, b.Snapshot().StoreSize)
}

func TestRouter(t *testing.T) {
	reg := prometheus.NewRegistry()
	tr := NewTracker(reg)
	tr.SetStore(3, 500)

	srv := httptest.NewServer(NewRouter(reg))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "whalewatch_store_alerts 3")
	assert.Contains(t, string(body), "whalewatch_oldest_offset 500")
}
