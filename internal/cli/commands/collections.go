package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conduit-lang/explorer/internal/cli/ui"
	"github.com/conduit-lang/explorer/internal/explorer"
	"github.com/conduit-lang/explorer/internal/source"
)

// NewCollectionsCommand creates the collections command
func NewCollectionsCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "collections",
		Short: "List the collections of the data source",
		Long:  "List the user collections of the configured data source. System collections are hidden.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, nil)
			if err != nil {
				return err
			}
			defer a.Close()

			var collections []source.Collection
			err = withSpinner(cmd, "Loading collections...", func() error {
				var err error
				collections, err = a.Service.Collections(cmd.Context())
				return err
			})
			if err != nil {
				return reportFetchError(cmd, a.Service, "", "", err)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, explorer.CollectionsJSON{Collections: collections})
			}
			if len(collections) == 0 {
				fmt.Fprint(out, ui.Info("No collections found", noColor))
				return nil
			}

			table := ui.NewTable(out, []string{"Collection", "Note"}, &ui.TableOptions{NoColor: noColor, MaxCellWidth: 60})
			for _, c := range collections {
				table.AddRow(c.Name, c.Note)
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}
