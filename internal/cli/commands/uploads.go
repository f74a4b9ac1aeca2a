package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/habistat-labs/habistat/internal/store"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

// NewUploadsCommand creates the uploads command.
func NewUploadsCommand() *cobra.Command {
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "uploads",
		Short: "List recent ingestion runs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			st, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			logs, err := st.ListUploadLogs(ctx, limit)
			if err != nil {
				return err
			}

			if jsonOutput {
				return renderUploadsJSON(cmd.OutOrStdout(), logs)
			}
			renderUploadsTable(cmd.OutOrStdout(), logs)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to show")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func renderUploadsTable(w io.Writer, logs []*store.UploadLog) {
	if len(logs) == 0 {
		fmt.Fprintln(w, "(no uploads)")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Started", "File", "Status", "Records", "Error"})
	for _, l := range logs {
		t.AppendRow(table.Row{
			l.CreatedAt.Format(time.RFC3339),
			l.Filename,
			l.Status,
			l.RecordsProcessed,
			l.Error,
		})
	}
	t.Render()
}

func renderUploadsJSON(w io.Writer, logs []*store.UploadLog) error {
	type uploadRow struct {
		ID               string `json:"id"`
		Filename         string `json:"filename"`
		Status           string `json:"status"`
		RecordsProcessed int    `json:"records_processed"`
		Error            string `json:"error,omitempty"`
		CreatedAt        string `json:"created_at"`
	}

	rows := make([]uploadRow, len(logs))
	for i, l := range logs {
		rows[i] = uploadRow{
			ID:               l.ID,
			Filename:         l.Filename,
			Status:           string(l.Status),
			RecordsProcessed: l.RecordsProcessed,
			Error:            l.Error,
			CreatedAt:        l.CreatedAt.Format(time.RFC3339),
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}
