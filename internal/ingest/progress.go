package ingest

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/brandt/screener/backend/internal/contracts"
)

// ErrAlreadyRunning is returned when a full ingestion is requested while
// one is still in flight. The API maps it to 409.
var ErrAlreadyRunning = errors.New("ingestion already running")

const (
	tickerErrorLimit = 100
	runErrorLimit    = 200
)

// Tracker holds the progress of the current (or last) ingestion run behind
// a mutex. Workers update it concurrently; the API reads point-in-time
// copies through Snapshot.
type Tracker struct {
	mu sync.Mutex
	p  contracts.IngestionProgress
}

// NewTracker creates an idle tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Start claims the tracker for a new run, resetting all counters.
// Returns ErrAlreadyRunning if a run is still marked running.
func (t *Tracker) Start(phase string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.p.Running {
		return ErrAlreadyRunning
	}

	now := time.Now().UTC()
	t.p = contracts.IngestionProgress{
		Running:   true,
		Phase:     phase,
		StartedAt: &now,
	}
	return nil
}

// SetPhase updates the human-readable phase label.
func (t *Tracker) SetPhase(phase string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.p.Phase = phase
}

// SetTotal records how many companies the run will process.
func (t *Tracker) SetTotal(total int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.p.Total = total
}

// Advance marks one more company as being processed and returns the new
// position, for the caller's periodic progress logging.
func (t *Tracker) Advance(ticker string) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.p.Current++
	t.p.CurrentTicker = ticker
	return t.p.Current
}

// Fail counts one per-company failure; the run keeps going.
func (t *Tracker) Fail(ticker string, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.p.Errors++
	t.p.LastError = fmt.Sprintf("%s: %s", ticker, truncate(err.Error(), tickerErrorLimit))
}

// Finish releases the tracker with a final phase label.
func (t *Tracker) Finish(phase string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.p.Running = false
	t.p.Phase = phase
	t.p.CurrentTicker = ""
}

// Abort releases the tracker after a run-level failure.
func (t *Tracker) Abort(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.p.Running = false
	t.p.Phase = "Failed: " + truncate(err.Error(), runErrorLimit)
	t.p.LastError = truncate(err.Error(), runErrorLimit)
	t.p.CurrentTicker = ""
}

// Snapshot returns a copy safe to serialize while workers keep writing.
func (t *Tracker) Snapshot() contracts.IngestionProgress {
	t.mu.Lock()
	defer t.mu.Unlock()

	p := t.p
	if t.p.StartedAt != nil {
		started := *t.p.StartedAt
		p.StartedAt = &started
	}
	return p
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
