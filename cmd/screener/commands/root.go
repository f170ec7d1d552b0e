package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/brandt/screener/backend/pkg/config"
)

var (
	// Global flags
	logLevel string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "screener",
	Short: "Personal stock screener backend",
	Long: `Stock screener backend CLI

Ingests global company fundamentals from Financial Modeling Prep,
composes per-company screening snapshots and serves them over a
REST API with a filter-expression screen endpoint.

Usage:
  go run ./cmd/screener [command]

Examples:
  go run ./cmd/screener migrate
  go run ./cmd/screener api
  go run ./cmd/screener ingest
  go run ./cmd/screener quotes`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level override (debug|info|warn|error)")
}

// loadConfig loads the environment configuration and applies global flag
// overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	return cfg, nil
}
