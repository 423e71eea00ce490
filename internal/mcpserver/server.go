// Package mcpserver exposes the explorer to AI agents as MCP tools over
// stdio. Tool results are the same JSON documents the HTTP API returns.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/conduit-lang/explorer/internal/explorer"
	"github.com/conduit-lang/explorer/internal/source"
	"github.com/conduit-lang/explorer/internal/web/query"
	"github.com/conduit-lang/explorer/pkg/grid"
)

// Name is the server name reported to clients.
const Name = "explorer"

// Server is the MCP server.
type Server struct {
	mcp     *server.MCPServer
	service *explorer.Service
	logger  *zap.Logger
}

// New creates a server with every tool registered.
func New(service *explorer.Service, version string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{service: service, logger: logger}
	s.mcp = server.NewMCPServer(Name, version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)
	s.registerTools()
	return s
}

// Serve speaks MCP on in and out until ctx is done or in is closed.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(zap.NewStdLog(s.logger))
	s.logger.Info("mcp server ready")
	return stdio.Listen(ctx, in, out)
}

func (s *Server) registerTools() {
	s.mcp.AddTool(mcp.NewTool("list_collections",
		mcp.WithDescription("List the collections that can be browsed, with their notes"),
	), s.handleListCollections)

	s.mcp.AddTool(mcp.NewTool("describe_collection",
		mcp.WithDescription("Describe the fields and display columns of a collection"),
		mcp.WithString("collection", mcp.Description("Collection name"), mcp.Required()),
	), s.handleDescribeCollection)

	s.mcp.AddTool(mcp.NewTool("query_collection",
		mcp.WithDescription("Filter, sort and page the rows of a collection. Rows carry formatted cells and raw data."),
		mcp.WithString("collection", mcp.Description("Collection name"), mcp.Required()),
		mcp.WithString("filter", mcp.Description("Case-insensitive text every returned row must contain")),
		mcp.WithString("sort", mcp.Description("Column key to sort by; prefix with - for descending")),
		mcp.WithNumber("page", mcp.Description("1-based page number"), mcp.Min(1)),
		mcp.WithNumber("page_size", mcp.Description("Rows per page"), mcp.Min(1), mcp.Max(500)),
	), s.handleQueryCollection)

	s.mcp.AddTool(mcp.NewTool("get_item",
		mcp.WithDescription("Fetch one item of a collection by primary key"),
		mcp.WithString("collection", mcp.Description("Collection name"), mcp.Required()),
		mcp.WithString("id", mcp.Description("Primary key value"), mcp.Required()),
	), s.handleGetItem)
}

func (s *Server) handleListCollections(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	collections, err := s.service.Collections(ctx)
	if err != nil {
		return s.toolError(req, err), nil
	}
	return jsonResult(explorer.CollectionsJSON{Collections: collections})
}

type descriptionJSON struct {
	Collection string                   `json:"collection"`
	KeyField   string                   `json:"key_field"`
	Rows       int                      `json:"rows"`
	Fields     []source.FieldDescriptor `json:"fields"`
	Columns    []explorer.ColumnJSON    `json:"columns"`
	Warning    string                   `json:"warning,omitempty"`
}

func (s *Server) handleDescribeCollection(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("collection")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	c, err := s.service.Open(ctx, name)
	if err != nil {
		return s.toolError(req, err), nil
	}

	columns := grid.ResolveColumns(c.Rows, c.Columns)
	out := descriptionJSON{
		Collection: c.Name,
		KeyField:   c.KeyField,
		Rows:       len(c.Rows),
		Fields:     c.Fields,
		Columns:    make([]explorer.ColumnJSON, len(columns)),
		Warning:    c.Warning,
	}
	if out.Fields == nil {
		out.Fields = []source.FieldDescriptor{}
	}
	for i, col := range columns {
		out.Columns[i] = explorer.ColumnJSON{Key: col.Key, Label: col.Label(), Kind: string(col.Kind)}
	}
	return jsonResult(out)
}

func (s *Server) handleQueryCollection(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("collection")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	params := query.ViewParams{
		Query:    req.GetString("filter", ""),
		Sort:     grid.ParseSort(req.GetString("sort", "")),
		Page:     max(req.GetInt("page", 1)-1, 0),
		PageSize: req.GetInt("page_size", 0),
	}

	c, table, err := s.service.Query(ctx, name, params)
	if err != nil {
		return s.toolError(req, err), nil
	}
	out := explorer.NewTableJSON(name, table)
	out.Warning = c.Warning
	return jsonResult(out)
}

func (s *Server) handleGetItem(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("collection")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	item, err := s.service.Item(ctx, name, id)
	if err != nil {
		return s.toolError(req, err), nil
	}
	return jsonResult(explorer.NewItemJSON(item))
}

// toolError reports a failed call as a tool result so the agent can
// react to it.
func (s *Server) toolError(req mcp.CallToolRequest, err error) *mcp.CallToolResult {
	if errors.Is(err, source.ErrNotFound) {
		s.logger.Debug("tool call not found", zap.String("tool", req.Params.Name), zap.Error(err))
		return mcp.NewToolResultError(fmt.Sprintf("not found: %v. Use list_collections to see what exists.", err))
	}
	s.logger.Warn("tool call failed", zap.String("tool", req.Params.Name), zap.Error(err))
	return mcp.NewToolResultError(err.Error())
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
