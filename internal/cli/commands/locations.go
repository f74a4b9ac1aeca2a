package commands

import (
	"fmt"

	"github.com/habistat-labs/habistat/internal/store"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

// NewLocationsCommand creates the locations command.
func NewLocationsCommand() *cobra.Command {
	var typeFilter string

	cmd := &cobra.Command{
		Use:   "locations",
		Short: "List the persisted location hierarchy",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			st, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			locations, err := st.ListLocations(ctx)
			if err != nil {
				return err
			}

			if typeFilter != "" {
				filtered := locations[:0]
				for _, loc := range locations {
					if string(loc.Type) == typeFilter {
						filtered = append(filtered, loc)
					}
				}
				locations = filtered
			}

			if len(locations) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "(no locations)")
				return nil
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Name", "Type", "State"})
			for _, loc := range locations {
				t.AppendRow(table.Row{loc.Name, loc.Type, loc.State})
			}
			t.Render()
			return nil
		},
	}

	cmd.Flags().StringVar(&typeFilter, "type", "", fmt.Sprintf(
		"Filter by location type (%s, %s, %s, %s)",
		store.LocationNational, store.LocationState, store.LocationMunicipality, store.LocationMetroZone))

	return cmd
}
