package ingest

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracker_Lifecycle(t *testing.T) {
	tracker := NewTracker()

	idle := tracker.Snapshot()
	assert.False(t, idle.Running)
	assert.Empty(t, idle.Phase)
	assert.Nil(t, idle.StartedAt)

	require.NoError(t, tracker.Start("Loading stock list"))

	p := tracker.Snapshot()
	assert.True(t, p.Running)
	assert.Equal(t, "Loading stock list", p.Phase)
	assert.NotNil(t, p.StartedAt)
	assert.Zero(t, p.Current)
	assert.Zero(t, p.Errors)

	assert.ErrorIs(t, tracker.Start("again"), ErrAlreadyRunning)

	tracker.SetPhase("Ingesting company data")
	tracker.SetTotal(250)
	assert.Equal(t, 1, tracker.Advance("AAPL"))
	assert.Equal(t, 2, tracker.Advance("MSFT"))

	p = tracker.Snapshot()
	assert.Equal(t, "Ingesting company data", p.Phase)
	assert.Equal(t, 250, p.Total)
	assert.Equal(t, 2, p.Current)
	assert.Equal(t, "MSFT", p.CurrentTicker)

	tracker.Fail("MSFT", errors.New("profile fetch timed out"))
	p = tracker.Snapshot()
	assert.Equal(t, 1, p.Errors)
	assert.Equal(t, "MSFT: profile fetch timed out", p.LastError)

	tracker.Finish("Complete")
	p = tracker.Snapshot()
	assert.False(t, p.Running)
	assert.Equal(t, "Complete", p.Phase)
	assert.Empty(t, p.CurrentTicker)
	assert.Equal(t, 1, p.Errors)

	// A finished tracker can be claimed again, with counters reset.
	require.NoError(t, tracker.Start("Loading stock list"))
	p = tracker.Snapshot()
	assert.Zero(t, p.Current)
	assert.Zero(t, p.Errors)
	assert.Empty(t, p.LastError)
}

func TestTracker_FailTruncatesPerCompanyError(t *testing.T) {
	tracker := NewTracker()
	require.NoError(t, tracker.Start("run"))

	tracker.Fail("XYZ", errors.New(strings.Repeat("e", 150)))

	p := tracker.Snapshot()
	assert.Equal(t, "XYZ: "+strings.Repeat("e", 100), p.LastError)
}

func TestTracker_AbortTruncatesRunError(t *testing.T) {
	tracker := NewTracker()
	require.NoError(t, tracker.Start("run"))
	tracker.Advance("AAPL")

	tracker.Abort(errors.New(strings.Repeat("x", 300)))

	p := tracker.Snapshot()
	assert.False(t, p.Running)
	assert.Equal(t, "Failed: "+strings.Repeat("x", 200), p.Phase)
	assert.Equal(t, strings.Repeat("x", 200), p.LastError)
	assert.Empty(t, p.CurrentTicker)
}

// Advance must hand out each position exactly once under concurrent
// workers; the every-N progress log depends on it.
func TestTracker_ConcurrentAdvance(t *testing.T) {
	const workers = 8
	const perWorker = 50

	tracker := NewTracker()
	require.NoError(t, tracker.Start("run"))

	positions := make(chan int, workers*perWorker)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				positions <- tracker.Advance("TICK")
			}
		}()
	}
	wg.Wait()
	close(positions)

	seen := make(map[int]bool, workers*perWorker)
	for pos := range positions {
		assert.False(t, seen[pos], "position %d handed out twice", pos)
		seen[pos] = true
	}
	assert.Len(t, seen, workers*perWorker)
	assert.Equal(t, workers*perWorker, tracker.Snapshot().Current)
}

func TestTracker_SnapshotIsCopy(t *testing.T) {
	tracker := NewTracker()
	require.NoError(t, tracker.Start("run"))

	first := tracker.Snapshot()
	started := *first.StartedAt
	first.StartedAt = nil
	*tracker.Snapshot().StartedAt = started.AddDate(1, 0, 0)

	second := tracker.Snapshot()
	require.NotNil(t, second.StartedAt)
	assert.Equal(t, started, *second.StartedAt)
}
