package jobs

import (
	"context"
	"fmt"

	"github.com/brandt/screener/backend/pkg/logger"
)

// QuoteRefreshJob patches market cap, price and P/E on existing
// snapshots from batch quotes.
type QuoteRefreshJob struct {
	runner   Runner
	schedule string
	logger   *logger.Logger
}

// NewQuoteRefreshJob creates a new quote refresh job
func NewQuoteRefreshJob(runner Runner, schedule string, log *logger.Logger) *QuoteRefreshJob {
	return &QuoteRefreshJob{
		runner:   runner,
		schedule: schedule,
		logger:   log,
	}
}

// Name returns the job name
func (j *QuoteRefreshJob) Name() string {
	return "quote_refresh"
}

// Schedule returns the configured cron schedule
func (j *QuoteRefreshJob) Schedule() string {
	return j.schedule
}

// Run executes the quote refresh
func (j *QuoteRefreshJob) Run(ctx context.Context) error {
	j.logger.Info("Starting scheduled quote refresh")

	if err := j.runner.RefreshQuotes(ctx); err != nil {
		return fmt.Errorf("quote refresh: %w", err)
	}

	j.logger.Info("Scheduled quote refresh completed successfully")
	return nil
}
