// Package cli provides the command-line interface for habistat.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/habistat-labs/habistat/internal/cli/commands"
	"github.com/habistat-labs/habistat/internal/config"
	"github.com/spf13/cobra"
)

var cfgFile string

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "habistat",
		Short: "Habistat - Housing Price Index Ingestion",
		Long: `Habistat ingests the quarterly housing price-index CSV published by the
housing-finance authority, normalizes it into a location hierarchy and
quarterly price records, and keeps an audit log of every upload.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, err := config.Load(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			level := slog.LevelInfo
			if cfg.Verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
				Level: level,
			}))

			cmd.SetContext(commands.WithRuntime(cmd.Context(), cfg, logger))
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
`)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./habistat.yaml)")
	rootCmd.PersistentFlags().String("store-type", "", "Storage backend (postgres or sqlite)")
	rootCmd.PersistentFlags().String("database", "", "SQLite database path (or :memory:)")
	rootCmd.PersistentFlags().String("output", "", "Output format (text or json)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")

	rootCmd.AddCommand(commands.NewIngestCommand())
	rootCmd.AddCommand(commands.NewUploadsCommand())
	rootCmd.AddCommand(commands.NewLocationsCommand())
	rootCmd.AddCommand(commands.NewMigrateCommand())
	rootCmd.AddCommand(commands.NewVersionCommand(Version, BuildDate, GitCommit))

	return rootCmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
