package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

// quotesCmd represents the quotes command
var quotesCmd = &cobra.Command{
	Use:   "quotes",
	Short: "Refresh quotes for snapshotted companies",
	Long: `Refreshes price, market cap and day-change fields on the existing
screening snapshots using batch quote requests. Much cheaper than a
full ingestion; fundamentals are left untouched.

Example:
  go run ./cmd/screener quotes`,
	RunE: runQuotes,
}

func init() {
	rootCmd.AddCommand(quotesCmd)
}

func runQuotes(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Screener Quote Refresh ===")

	deps, err := initIngestion()
	if err != nil {
		return err
	}
	defer deps.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	start := time.Now()

	if err := deps.orchestrator.RefreshQuotes(ctx); err != nil {
		return fmt.Errorf("quote refresh: %w", err)
	}

	fmt.Printf("\n✅ Quotes refreshed in %s\n", time.Since(start).Round(time.Second))
	return nil
}
