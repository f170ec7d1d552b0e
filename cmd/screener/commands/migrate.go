package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/brandt/screener/backend/internal/fundamentals"
)

// migrateCmd represents the migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	Long: `Applies all pending schema migrations to the configured database.
Safe to run repeatedly; an up-to-date database is left alone.

Example:
  go run ./cmd/screener migrate`,
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Screener Migrations ===")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if err := fundamentals.Migrate(cfg.Database.URL); err != nil {
		return err
	}

	fmt.Println("\n✅ Database schema is up to date")
	return nil
}
