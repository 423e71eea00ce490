package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conduit-lang/explorer/internal/cli/ui"
	"github.com/conduit-lang/explorer/internal/explorer"
)

// NewShowCommand creates the show command
func NewShowCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <collection> <id>",
		Short: "Print one item as key/value pairs",
		Long: `Fetch one item by primary key and print every field.

Schema fields missing from the item are listed with the empty marker;
objects are printed as indented JSON.`,
		Example: `  explorer show posts 42
  explorer show posts 42 --json`,
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: completeCollection,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(cmd, args[0], args[1], asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}

func runShow(cmd *cobra.Command, name, id string, asJSON bool) error {
	a, err := openApp(cmd, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	var item *explorer.Item
	err = withSpinner(cmd, fmt.Sprintf("Loading %s/%s...", name, id), func() error {
		var err error
		item, err = a.Service.Item(cmd.Context(), name, id)
		return err
	})
	if err != nil {
		return reportFetchError(cmd, a.Service, name, id, err)
	}

	out := cmd.OutOrStdout()
	if asJSON {
		return writeJSON(out, explorer.NewItemJSON(item))
	}

	ui.Header(out, fmt.Sprintf("%s/%s", name, id), noColor)
	kv := ui.NewKeyValueTable(out, noColor)
	for _, e := range item.Entries {
		kv.AddRow(e.Label, ui.CellText(e.Cell, noColor))
	}
	kv.Render()
	return nil
}
