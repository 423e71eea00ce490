package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/conduit-lang/explorer/internal/cli/config"
	"github.com/conduit-lang/explorer/internal/cli/ui"
	"github.com/conduit-lang/explorer/internal/explorer"
	"github.com/conduit-lang/explorer/internal/web/query"
	"github.com/conduit-lang/explorer/pkg/grid"
)

type listOptions struct {
	filter   string
	sort     string
	desc     bool
	page     int
	pageSize int
	limit    int
	json     bool
}

// NewListCommand creates the list command
func NewListCommand() *cobra.Command {
	opts := &listOptions{}

	cmd := &cobra.Command{
		Use:     "list <collection>",
		Aliases: []string{"ls"},
		Short:   "Print a page of a collection as a table",
		Long: `Fetch a collection and print one page of it.

Rows are filtered first (case-insensitive, any column), then sorted,
then paged, exactly like the web view.`,
		Example: `  explorer list posts
  explorer list posts --filter draft --sort title
  explorer list posts --sort published_at --desc --page 2
  explorer list posts --json`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeCollection,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.filter, "filter", "f", "", "Only show rows containing this text")
	cmd.Flags().StringVarP(&opts.sort, "sort", "s", "", "Column to sort by (prefix with - for descending)")
	cmd.Flags().BoolVar(&opts.desc, "desc", false, "Sort descending")
	cmd.Flags().IntVarP(&opts.page, "page", "p", 1, "Page to show (1-based)")
	cmd.Flags().IntVar(&opts.pageSize, "page-size", 0, "Rows per page (default grid.page_size)")
	cmd.Flags().IntVar(&opts.limit, "limit", 0, "Rows to fetch from the source (default source.fetch_limit)")
	cmd.Flags().BoolVar(&opts.json, "json", false, "Output JSON")

	return cmd
}

func runList(cmd *cobra.Command, name string, opts *listOptions) error {
	a, err := openApp(cmd, func(cfg *config.Config) {
		if opts.limit > 0 {
			cfg.Source.FetchLimit = opts.limit
		}
	})
	if err != nil {
		return err
	}
	defer a.Close()

	params := query.ViewParams{
		Query:    opts.filter,
		Sort:     grid.ParseSort(opts.sort),
		Page:     max(opts.page-1, 0),
		PageSize: opts.pageSize,
	}
	if opts.desc && !params.Sort.IsNone() {
		params.Sort.Direction = grid.Descending
	}

	var (
		c     *explorer.Collection
		table grid.Table
	)
	err = withSpinner(cmd, fmt.Sprintf("Loading %s...", name), func() error {
		var err error
		c, table, err = a.Service.Query(cmd.Context(), name, params)
		return err
	})
	if err != nil {
		return reportFetchError(cmd, a.Service, name, "", err)
	}

	out := cmd.OutOrStdout()
	if opts.json {
		doc := explorer.NewTableJSON(name, table)
		doc.Warning = c.Warning
		return writeJSON(out, doc)
	}

	if c.Warning != "" {
		fmt.Fprint(cmd.ErrOrStderr(), ui.Warning(c.Warning, noColor))
	}
	ui.RenderGrid(out, table, ui.GridOptions{NoColor: noColor, MaxCellWidth: 40})
	if hint := ui.PageHint(table); hint != "" {
		muted := color.New(color.FgHiBlack)
		if noColor {
			muted.DisableColor()
		}
		muted.Fprintf(out, "More: %s\n", hint)
	}
	return nil
}
