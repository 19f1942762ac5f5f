package store

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func alertAt(id string, ts int64) Alert {
	return Alert{ID: id, Timestamp: time.Unix(ts, 0), Value: 1500}
}

func TestAccumulatorMergeIsIdempotent(t *testing.T) {
	acc := NewAccumulator()

	assert.True(t, acc.Merge(alertAt("tx-1", 100)))
	assert.False(t, acc.Merge(alertAt("tx-1", 100)))
	assert.Equal(t, 1, acc.Len())
}

func TestAccumulatorMergeDoesNotOverwrite(t *testing.T) {
	acc := NewAccumulator()

	first := alertAt("tx-1", 100)
	first.MarketTitle = "original"
	require.True(t, acc.Merge(first))

	second := alertAt("tx-1", 200)
	second.MarketTitle = "replacement"
	require.False(t, acc.Merge(second))

	snap := acc.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, "original", snap[0].MarketTitle)
}

func TestAccumulatorSnapshotSortedNewestFirst(t *testing.T) {
	acc := NewAccumulator()
	for i, ts := range []int64{300, 100, 500, 200, 500, 400} {
		acc.Merge(alertAt(fmt.Sprintf("id-%d", i), ts))
	}

	snap := acc.Snapshot()
	require.Len(t, snap, 6)
	for i := 1; i < len(snap); i++ {
		assert.False(t, snap[i].Timestamp.After(snap[i-1].Timestamp),
			"alert %d (%v) is newer than alert %d (%v)", i, snap[i].Timestamp, i-1, snap[i-1].Timestamp)
	}

	// ties are ordered by ID
	assert.Equal(t, "id-2", snap[0].ID)
	assert.Equal(t, "id-4", snap[1].ID)
}

func TestAccumulatorSnapshotIsACopy(t *testing.T) {
	acc := NewAccumulator()
	acc.Merge(alertAt("a", 1))

	snap := acc.Snapshot()
	snap[0].ID = "mutated"

	assert.Equal(t, "a", acc.Snapshot()[0].ID)
}

func TestAccumulatorOffsetIsMonotonic(t *testing.T) {
	acc := NewAccumulator()
	assert.Equal(t, 0, acc.Offset())

	assert.True(t, acc.AdvanceOffset(500))
	assert.Equal(t, 500, acc.Offset())

	assert.False(t, acc.AdvanceOffset(0))
	assert.Equal(t, 500, acc.Offset())

	assert.True(t, acc.AdvanceOffset(500))
	assert.True(t, acc.AdvanceOffset(1000))
	assert.Equal(t, 1000, acc.Offset())
}

func TestAccumulatorConcurrentMerge(t *testing.T) {
	acc := NewAccumulator()

	var wg sync.WaitGroup
	var mu sync.Mutex
	inserted := 0
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				if acc.Merge(alertAt(fmt.Sprintf("id-%d", i), int64(i))) {
					mu.Lock()
					inserted++
					mu.Unlock()
				}
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, inserted)
	assert.Equal(t, 100, acc.Len())
}
