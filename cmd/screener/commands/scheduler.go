package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/brandt/screener/backend/internal/scheduler"
	"github.com/brandt/screener/backend/internal/scheduler/jobs"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Run the scheduler daemon",
	Long: `Runs the cron scheduler as a standalone daemon, without the API
server. Useful when the API runs elsewhere with --no-scheduler.

Registered jobs:
- full_ingestion: full pipeline run (default daily at 05:00)
- quote_refresh:  snapshot quote update (default every 4 hours)

Schedules come from SCHEDULE_FULL_INGESTION and SCHEDULE_QUOTE_REFRESH
(6-field cron specs, with seconds). Ctrl+C stops the daemon and waits
for a running job to finish.

Example:
  go run ./cmd/screener scheduler`,
	RunE: runSchedulerDaemon,
}

func init() {
	rootCmd.AddCommand(schedulerCmd)
}

func runSchedulerDaemon(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Screener Scheduler ===")

	deps, err := initIngestion()
	if err != nil {
		return err
	}
	defer deps.Close()

	sched := scheduler.New(deps.log)

	fullJob := jobs.NewFullIngestionJob(deps.orchestrator, deps.cfg.Scheduler.FullIngestionSpec, deps.log)
	quoteJob := jobs.NewQuoteRefreshJob(deps.orchestrator, deps.cfg.Scheduler.QuoteRefreshSpec, deps.log)

	if err := sched.AddJob(fullJob); err != nil {
		return fmt.Errorf("register full ingestion job: %w", err)
	}
	if err := sched.AddJob(quoteJob); err != nil {
		return fmt.Errorf("register quote refresh job: %w", err)
	}

	sched.Start()

	fmt.Println("\n✅ Scheduler started successfully")
	fmt.Println("\nRegistered jobs:")
	fmt.Printf("  - %s (%s)\n", fullJob.Name(), fullJob.Schedule())
	fmt.Printf("  - %s (%s)\n", quoteJob.Name(), quoteJob.Schedule())
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down scheduler...")
	sched.Stop()
	fmt.Println("Scheduler stopped")

	return nil
}
