// Command explorer browses data collections as filterable, sortable,
// paginated tables in the browser, the terminal or an MCP client.
//
// Build with version information:
//
//	go build -ldflags "-X github.com/conduit-lang/explorer/internal/cli/commands.Version=v1.0.0" ./cmd/explorer
package main

import (
	"os"

	"github.com/conduit-lang/explorer/internal/cli/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
