package commands

import (
	"github.com/spf13/cobra"

	"github.com/conduit-lang/explorer/internal/mcpserver"
)

// NewMCPCommand creates the mcp command
func NewMCPCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the explorer as MCP tools over stdio",
		Long: `Run a Model Context Protocol server on stdin/stdout.

Tools:
  list_collections      collections and their notes
  describe_collection   fields and display columns
  query_collection      filtered, sorted, paged rows
  get_item              one item by primary key

Logs go to stderr; stdout carries the protocol.`,
		Example: `  # Claude Desktop / any MCP client
  {"command": "explorer", "args": ["mcp", "--config", "/path/to/explorer.yaml"]}`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, nil)
			if err != nil {
				return err
			}
			defer a.Close()

			s := mcpserver.New(a.Service, Version, a.Logger.Named("mcp"))
			return s.Serve(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}
