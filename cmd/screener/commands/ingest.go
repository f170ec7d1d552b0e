package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/brandt/screener/backend/internal/external/fmp"
	"github.com/brandt/screener/backend/internal/fundamentals"
	"github.com/brandt/screener/backend/internal/ingest"
	"github.com/brandt/screener/backend/internal/snapshot"
	"github.com/brandt/screener/backend/pkg/config"
	"github.com/brandt/screener/backend/pkg/database"
	"github.com/brandt/screener/backend/pkg/httputil"
	"github.com/brandt/screener/backend/pkg/logger"
)

// ingestCmd represents the ingest command
var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Run a full data ingestion",
	Long: `Runs the full ingestion pipeline once and exits.

This command:
- Syncs the company universe from the FMP stock list
- Pulls profile, income statement and key metric history per company
- Recomposes the screening snapshot for every company

A full run takes a while; throughput is bounded by the FMP plan's
per-minute request budget. Ctrl+C aborts the run.

Example:
  go run ./cmd/screener ingest`,
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Screener Full Ingestion ===")

	deps, err := initIngestion()
	if err != nil {
		return err
	}
	defer deps.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	start := time.Now()

	if err := deps.orchestrator.RunFull(ctx); err != nil {
		return fmt.Errorf("full ingestion: %w", err)
	}

	progress := deps.orchestrator.Progress()
	fmt.Printf("\n✅ Ingestion finished in %s\n", time.Since(start).Round(time.Second))
	fmt.Printf("   Companies: %d of %d, errors: %d\n", progress.Current, progress.Total, progress.Errors)
	return nil
}

// ingestDeps bundles what the one-shot commands wire up and must close.
type ingestDeps struct {
	cfg          *config.Config
	log          *logger.Logger
	db           *database.DB
	orchestrator *ingest.Orchestrator
}

func (d *ingestDeps) Close() {
	d.db.Close()
}

func initIngestion() (*ingestDeps, error) {
	// 1. Load config
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Connect to database
	db, err := database.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	// 4. Create FMP client
	httpClient := httputil.New(cfg, log)
	fmpClient := fmp.NewClient(cfg, log, httpClient)

	// 5. Create repositories
	companyRepo := fundamentals.NewCompanyRepository(db.Pool)
	incomeRepo := fundamentals.NewIncomeStatementRepository(db.Pool)
	metricsRepo := fundamentals.NewKeyMetricsRepository(db.Pool)
	snapshotRepo := fundamentals.NewSnapshotRepository(db.Pool)

	// 6. Create orchestrator
	composer := snapshot.NewComposer(incomeRepo, metricsRepo, snapshotRepo, log)
	tracker := ingest.NewTracker()
	orchestrator := ingest.NewOrchestrator(
		cfg.Ingest, fmpClient,
		companyRepo, incomeRepo, metricsRepo, snapshotRepo,
		composer, tracker, log,
	)

	return &ingestDeps{
		cfg:          cfg,
		log:          log,
		db:           db,
		orchestrator: orchestrator,
	}, nil
}
