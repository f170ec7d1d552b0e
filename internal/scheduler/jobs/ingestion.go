package jobs

import (
	"context"
	"errors"
	"fmt"

	"github.com/brandt/screener/backend/internal/ingest"
	"github.com/brandt/screener/backend/pkg/logger"
)

// Runner is the slice of the ingestion orchestrator the jobs drive.
type Runner interface {
	RunFull(ctx context.Context) error
	RefreshQuotes(ctx context.Context) error
}

// FullIngestionJob rebuilds the whole dataset: stock list, statements,
// metrics and snapshots for every active company.
type FullIngestionJob struct {
	runner   Runner
	schedule string
	logger   *logger.Logger
}

// NewFullIngestionJob creates a new full ingestion job
func NewFullIngestionJob(runner Runner, schedule string, log *logger.Logger) *FullIngestionJob {
	return &FullIngestionJob{
		runner:   runner,
		schedule: schedule,
		logger:   log,
	}
}

// Name returns the job name
func (j *FullIngestionJob) Name() string {
	return "full_ingestion"
}

// Schedule returns the configured cron schedule
func (j *FullIngestionJob) Schedule() string {
	return j.schedule
}

// Run executes the full ingestion
func (j *FullIngestionJob) Run(ctx context.Context) error {
	j.logger.Info("Starting scheduled full ingestion")

	if err := j.runner.RunFull(ctx); err != nil {
		// A manually triggered run owns the tracker; the scheduled run
		// yields instead of counting it as a failure.
		if errors.Is(err, ingest.ErrAlreadyRunning) {
			j.logger.Warn("Ingestion already running, skipping scheduled run")
			return nil
		}
		return fmt.Errorf("full ingestion: %w", err)
	}

	j.logger.Info("Scheduled full ingestion completed successfully")
	return nil
}
