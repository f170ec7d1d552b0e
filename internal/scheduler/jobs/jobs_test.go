package jobs

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brandt/screener/backend/internal/ingest"
	"github.com/brandt/screener/backend/pkg/config"
	"github.com/brandt/screener/backend/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(&config.Config{Env: "development", LogLevel: "error", LogFormat: "json"})
}

type fakeRunner struct {
	fullErr    error
	refreshErr error
	fullRuns   int
	refreshes  int
}

func (f *fakeRunner) RunFull(ctx context.Context) error {
	f.fullRuns++
	return f.fullErr
}

func (f *fakeRunner) RefreshQuotes(ctx context.Context) error {
	f.refreshes++
	return f.refreshErr
}

func TestFullIngestionJob(t *testing.T) {
	runner := &fakeRunner{}
	job := NewFullIngestionJob(runner, "0 0 5 * * *", testLogger())

	assert.Equal(t, "full_ingestion", job.Name())
	assert.Equal(t, "0 0 5 * * *", job.Schedule())

	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, 1, runner.fullRuns)
}

func TestFullIngestionJob_SkipsWhenAlreadyRunning(t *testing.T) {
	runner := &fakeRunner{fullErr: ingest.ErrAlreadyRunning}
	job := NewFullIngestionJob(runner, "0 0 5 * * *", testLogger())

	assert.NoError(t, job.Run(context.Background()),
		"an already-running ingestion is not a job failure")
}

func TestFullIngestionJob_WrapsFailure(t *testing.T) {
	cause := errors.New("fmp is down")
	runner := &fakeRunner{fullErr: cause}
	job := NewFullIngestionJob(runner, "0 0 5 * * *", testLogger())

	err := job.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "full ingestion")
}

func TestQuoteRefreshJob(t *testing.T) {
	runner := &fakeRunner{}
	job := NewQuoteRefreshJob(runner, "0 0 */4 * * *", testLogger())

	assert.Equal(t, "quote_refresh", job.Name())
	assert.Equal(t, "0 0 */4 * * *", job.Schedule())

	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, 1, runner.refreshes)
}

func TestQuoteRefreshJob_WrapsFailure(t *testing.T) {
	cause := errors.New("quote endpoint 500")
	runner := &fakeRunner{refreshErr: cause}
	job := NewQuoteRefreshJob(runner, "0 0 */4 * * *", testLogger())

	err := job.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
}
