package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/brandt/screener/backend/internal/fundamentals"
	"github.com/brandt/screener/backend/pkg/database"
)

// statsCmd represents the stats command
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show database coverage",
	Long: `Prints how much of the universe has been ingested and scored.

Example:
  go run ./cmd/screener stats`,
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	status, err := db.HealthCheck(ctx)
	if err != nil {
		return fmt.Errorf("health check: %w", err)
	}

	companies, err := fundamentals.NewCompanyRepository(db.Pool).Count(ctx)
	if err != nil {
		return fmt.Errorf("count companies: %w", err)
	}

	snapshots, err := fundamentals.NewSnapshotRepository(db.Pool).Count(ctx)
	if err != nil {
		return fmt.Errorf("count snapshots: %w", err)
	}

	watched, err := fundamentals.NewWatchlistRepository(db.Pool).Count(ctx)
	if err != nil {
		return fmt.Errorf("count watchlist: %w", err)
	}

	fmt.Println("=== Screener Database Coverage ===")
	fmt.Println()
	fmt.Printf("  Ping:       %v (%d/%d conns)\n", status.ResponseTime, status.Stats.TotalConns, status.Stats.MaxConns)
	fmt.Printf("  Companies:  %d\n", companies)
	fmt.Printf("  Screened:   %d\n", snapshots)
	fmt.Printf("  Watchlist:  %d\n", watched)

	return nil
}
