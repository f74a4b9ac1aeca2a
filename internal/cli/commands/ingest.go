package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/habistat-labs/habistat/internal/pipeline"
	"github.com/spf13/cobra"
)

// IngestOptions holds options for the ingest command.
type IngestOptions struct {
	JSONOutput bool
}

// NewIngestCommand creates the ingest command.
func NewIngestCommand() *cobra.Command {
	opts := &IngestOptions{}

	cmd := &cobra.Command{
		Use:   "ingest <file>",
		Short: "Ingest a quarterly price-index CSV file",
		Long: `Parse the authority's semicolon-delimited price-index CSV, reconcile its
location hierarchy against storage and upsert the quarterly price records.

Re-running the same file is safe: records are written with an upsert keyed
on (location, property type, quarter, year).`,
		Example: `  # Ingest a downloaded file
  habistat ingest indice_2024q2.csv

  # Machine-readable result for scripting
  habistat ingest indice_2024q2.csv --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(cmd, args[0], opts)
		},
	}

	cmd.Flags().BoolVar(&opts.JSONOutput, "json", false, "Output the result as JSON")

	return cmd
}

func runIngest(cmd *cobra.Command, path string, opts *IngestOptions) error {
	ctx := cmd.Context()
	cfg := getConfig(ctx)
	logger := getLogger(ctx)

	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	processor := pipeline.NewProcessor(st, logger, pipeline.WithBatchSize(cfg.BatchSize))
	result := processor.Ingest(ctx, content, filepath.Base(path))

	if opts.JSONOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		if err := enc.Encode(result); err != nil {
			return err
		}
	} else if result.Success {
		fmt.Fprintf(cmd.OutOrStdout(), "Processed %d records from %s\n", result.RecordsProcessed, filepath.Base(path))
	}

	if !result.Success {
		return fmt.Errorf("ingestion failed: %s", result.Error)
	}
	return nil
}
