package commands

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/conduit-lang/explorer/internal/app"
	"github.com/conduit-lang/explorer/internal/cli/config"
	"github.com/conduit-lang/explorer/internal/source"
	"github.com/conduit-lang/explorer/internal/tui"
)

// NewBrowseCommand creates the browse command
func NewBrowseCommand() *cobra.Command {
	var pageSize int

	cmd := &cobra.Command{
		Use:   "browse <collection>",
		Short: "Browse a collection interactively in the terminal",
		Long: `Open a full-screen table for a collection.

Keys:
  /          filter (enter keeps it, esc clears it)
  ←/→  h/l   select a column
  s          cycle the sort of the selected column
  [ ]        previous / next page
  enter      show the selected row
  r          reload
  q          quit`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeCollection,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, func(cfg *config.Config) {
				// Log lines would draw over the screen
				if logLevel == "" {
					cfg.Log.Level = "error"
				}
			})
			if err != nil {
				return err
			}
			defer a.Close()

			err = tui.Run(cmd.Context(), a.Service, args[0], tui.Options{
				PageSize: pageSize,
				Theme:    app.Theme(a.Config.Theme),
			})
			if errors.Is(err, source.ErrNotFound) {
				return reportFetchError(cmd, a.Service, args[0], "", err)
			}
			return err
		},
	}

	cmd.Flags().IntVar(&pageSize, "page-size", 0, "Rows per page (default grid.page_size)")
	return cmd
}
