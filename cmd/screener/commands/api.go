package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/brandt/screener/backend/internal/api"
	"github.com/brandt/screener/backend/internal/api/handlers"
	"github.com/brandt/screener/backend/internal/auth"
	"github.com/brandt/screener/backend/internal/external/fmp"
	"github.com/brandt/screener/backend/internal/fundamentals"
	"github.com/brandt/screener/backend/internal/ingest"
	"github.com/brandt/screener/backend/internal/scheduler"
	"github.com/brandt/screener/backend/internal/scheduler/jobs"
	"github.com/brandt/screener/backend/internal/screener"
	"github.com/brandt/screener/backend/internal/snapshot"
	"github.com/brandt/screener/backend/pkg/database"
	"github.com/brandt/screener/backend/pkg/httputil"
	"github.com/brandt/screener/backend/pkg/logger"
	"github.com/brandt/screener/backend/pkg/redis"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the API server",
	Long: `Starts the REST API server.

This command:
- Serves the screen, watchlist and admin endpoints
- Runs the cron scheduler in-process (disable with --no-scheduler)

Endpoints:
  GET  /api/health                  - Health check
  POST /api/auth/login              - Password login, returns a bearer token
  POST /api/screen                  - Run a screen
  GET  /api/fields                  - Screenable field catalog
  GET  /api/watchlist               - Watchlist with live snapshot data
  POST /api/admin/ingest            - Trigger a full ingestion
  GET  /api/admin/ingest/progress   - Ingestion progress
  GET  /api/admin/stats             - Database coverage stats

Example:
  go run ./cmd/screener api
  go run ./cmd/screener api --port 8080`,
	RunE: runAPIServer,
}

var (
	apiPort        string
	apiNoScheduler bool
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "listen port (overrides PORT)")
	apiCmd.Flags().BoolVar(&apiNoScheduler, "no-scheduler", false, "do not run scheduled jobs in this process")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Screener API Server ===")

	// 1. Load config
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Override port if flag is set
	if apiPort != "" {
		cfg.Port = apiPort
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	log.WithFields(map[string]interface{}{
		"port": cfg.Port,
		"env":  cfg.Env,
	}).Info("Initializing API server")

	// 3. Connect to database
	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	log.Info("Connected to database")

	// 4. Connect to Redis (pass-through cache when disabled)
	redisClient, err := redis.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer redisClient.Close()

	cache := redis.NewCache(redisClient, "screener")

	// 5. Create FMP client
	httpClient := httputil.New(cfg, log)
	fmpClient := fmp.NewClient(cfg, log, httpClient)

	// 6. Create repositories
	companyRepo := fundamentals.NewCompanyRepository(db.Pool)
	incomeRepo := fundamentals.NewIncomeStatementRepository(db.Pool)
	metricsRepo := fundamentals.NewKeyMetricsRepository(db.Pool)
	snapshotRepo := fundamentals.NewSnapshotRepository(db.Pool)
	watchlistRepo := fundamentals.NewWatchlistRepository(db.Pool)

	// 7. Create ingestion orchestrator
	composer := snapshot.NewComposer(incomeRepo, metricsRepo, snapshotRepo, log)
	tracker := ingest.NewTracker()
	orchestrator := ingest.NewOrchestrator(
		cfg.Ingest, fmpClient,
		companyRepo, incomeRepo, metricsRepo, snapshotRepo,
		composer, tracker, log,
	)

	// 8. Create services
	screenSvc := screener.NewService(db.Pool, cache, log)
	authSvc := auth.NewService(cfg.Auth)

	// 9. Create handlers
	h := api.Handlers{
		Auth:      handlers.NewAuthHandler(authSvc, log),
		Screen:    handlers.NewScreenHandler(screenSvc, log),
		Watchlist: handlers.NewWatchlistHandler(watchlistRepo, companyRepo, log),
		Admin:     handlers.NewAdminHandler(orchestrator, companyRepo, snapshotRepo, watchlistRepo, log),
	}

	// 10. Create router and server
	router := api.NewRouter(h, authSvc, cfg.CORSOrigins, log)
	server := api.New(cfg, log, router)

	// 11. Start scheduler (in-process, unless disabled)
	var sched *scheduler.Scheduler
	if cfg.Scheduler.Enabled && !apiNoScheduler {
		sched = scheduler.New(log)
		if err := sched.AddJob(jobs.NewFullIngestionJob(orchestrator, cfg.Scheduler.FullIngestionSpec, log)); err != nil {
			return fmt.Errorf("register full ingestion job: %w", err)
		}
		if err := sched.AddJob(jobs.NewQuoteRefreshJob(orchestrator, cfg.Scheduler.QuoteRefreshSpec, log)); err != nil {
			return fmt.Errorf("register quote refresh job: %w", err)
		}
		sched.Start()
		log.Info("Scheduler started")
	}

	// 12. Start server with graceful shutdown
	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	log.Info("API server started successfully")
	fmt.Printf("\n✅ Server running on http://localhost:%s\n", cfg.Port)
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	if sched != nil {
		sched.Stop()
	}

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
