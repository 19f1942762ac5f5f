package store

import (
	"sort"
	"sync"
)

// Accumulator is the session-wide memory of whale alerts seen so far.
//
// Alerts are append-only: once an ID is present it is never replaced or
// removed. The offset cursor only moves forward. All methods are safe for
// concurrent use; the refresh timer, the UI and the stream nudge each call in
// from their own goroutine.
type Accumulator struct {
	mu     sync.RWMutex
	alerts map[string]Alert
	offset int
}

// NewAccumulator creates an empty Accumulator with the offset cursor at 0.
func NewAccumulator() *Accumulator {
	return &Accumulator{
		alerts: make(map[string]Alert),
	}
}

// Merge inserts the alert if its ID has not been seen before.
// Returns true only when the alert was newly inserted.
func (a *Accumulator) Merge(alert Alert) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, exists := a.alerts[alert.ID]; exists {
		return false
	}
	a.alerts[alert.ID] = alert
	return true
}

// Snapshot returns all alerts sorted by timestamp, newest first.
// Alerts with equal timestamps are ordered by ID.
func (a *Accumulator) Snapshot() []Alert {
	a.mu.RLock()
	out := make([]Alert, 0, len(a.alerts))
	for _, alert := range a.alerts {
		out = append(out, alert)
	}
	a.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].ID < out[j].ID
		}
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out
}

// Len returns the number of alerts held.
func (a *Accumulator) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.alerts)
}

// Offset returns the oldest page offset fetched so far.
func (a *Accumulator) Offset() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.offset
}

// AdvanceOffset moves the cursor to newOffset. Values lower than the current
// cursor are ignored and reported with false.
func (a *Accumulator) AdvanceOffset(newOffset int) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if newOffset < a.offset {
		return false
	}
	a.offset = newOffset
	return true
}
