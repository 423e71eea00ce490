// Package explorer serves collections from a source through the grid
// engine. Service holds the fetch policy shared by every surface; Handler
// renders it as HTML pages and a JSON API.
package explorer

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/conduit-lang/explorer/internal/source"
	"github.com/conduit-lang/explorer/internal/web/query"
	"github.com/conduit-lang/explorer/pkg/grid"
)

// Config holds the view and fetch settings of a Service.
type Config struct {
	// FetchLimit caps the rows loaded per collection. Filtering, sorting
	// and paging happen over this window.
	FetchLimit int
	// PageSize is the default number of rows per page.
	PageSize         int
	EmptyMessage     string
	NoMatchesMessage string
	// FallbackEmptyOnError shows an empty table with a warning instead of
	// an error page when rows cannot be fetched. Missing collections are
	// still reported as not found.
	FallbackEmptyOnError bool
	Formatter            *grid.Formatter
	Compare              grid.Comparator
	Logger               *zap.Logger
}

// DefaultConfig returns the default service settings.
func DefaultConfig() Config {
	return Config{
		FetchLimit:       100,
		PageSize:         grid.DefaultPageSize,
		EmptyMessage:     "No data",
		NoMatchesMessage: "No rows",
		Formatter:        grid.NewFormatter(),
	}
}

// FallbackWarning is shown above a table whose rows could not be loaded.
const FallbackWarning = "Rows could not be loaded from the data source."

// Service loads collections and builds views over them.
type Service struct {
	source source.Source
	config Config
	logger *zap.Logger
}

// NewService creates a service reading from src.
func NewService(src source.Source, config Config) *Service {
	def := DefaultConfig()
	if config.FetchLimit <= 0 {
		config.FetchLimit = def.FetchLimit
	}
	if config.PageSize <= 0 {
		config.PageSize = def.PageSize
	}
	if config.EmptyMessage == "" {
		config.EmptyMessage = def.EmptyMessage
	}
	if config.NoMatchesMessage == "" {
		config.NoMatchesMessage = def.NoMatchesMessage
	}
	if config.Formatter == nil {
		config.Formatter = def.Formatter
	}
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{source: src, config: config, logger: logger}
}

// Source returns the underlying source.
func (s *Service) Source() source.Source { return s.source }

// Formatter returns the cell formatter.
func (s *Service) Formatter() *grid.Formatter { return s.config.Formatter }

// Collections returns the user collections.
func (s *Service) Collections(ctx context.Context) ([]source.Collection, error) {
	collections, err := s.source.ListCollections(ctx)
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	out := collections[:0:0]
	for _, c := range collections {
		if !c.System {
			out = append(out, c)
		}
	}
	return out, nil
}

// Collection is one loaded collection: its schema, its rows and the
// columns derived from them.
type Collection struct {
	Name    string
	Fields  []source.FieldDescriptor
	Rows    []grid.Row
	Columns []grid.Column
	// KeyField identifies rows for detail links.
	KeyField string
	// Warning is set when the rows were replaced by an empty list.
	Warning string
}

// Open fetches the schema and rows of name concurrently. A schema
// failure is tolerated and the columns are inferred from the rows.
func (s *Service) Open(ctx context.Context, name string) (*Collection, error) {
	var (
		fields    []source.FieldDescriptor
		schemaErr error
		rows      []grid.Row
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		fields, schemaErr = s.source.FetchCollectionSchema(gctx, name)
		return nil
	})
	g.Go(func() error {
		var err error
		rows, err = s.source.FetchRows(gctx, name, s.config.FetchLimit)
		return err
	})

	c := &Collection{Name: name}
	if err := g.Wait(); err != nil {
		if !s.config.FallbackEmptyOnError || errors.Is(err, source.ErrNotFound) || ctx.Err() != nil {
			return nil, fmt.Errorf("collection %s: %w", name, err)
		}
		s.logger.Warn("rows unavailable, showing empty table",
			zap.String("collection", name),
			zap.Error(err),
		)
		rows = nil
		c.Warning = FallbackWarning
	}

	if schemaErr != nil {
		s.logger.Debug("schema unavailable, inferring columns",
			zap.String("collection", name),
			zap.Error(schemaErr),
		)
		fields = nil
	}

	c.Fields = fields
	c.Rows = rows
	c.Columns = source.Columns(fields)
	c.KeyField = keyField(fields, rows)
	return c, nil
}

// keyField prefers the schema's primary key. Without a schema it looks
// for "id" and then "_id" in the first row.
func keyField(fields []source.FieldDescriptor, rows []grid.Row) string {
	if len(fields) > 0 {
		return source.PrimaryKey(fields)
	}
	if len(rows) > 0 && !rows[0].Has("id") && rows[0].Has("_id") {
		return "_id"
	}
	return "id"
}

// View creates a fresh view over c. pageSize <= 0 uses the configured
// page size.
func (s *Service) View(c *Collection, pageSize int) *grid.View {
	if pageSize <= 0 {
		pageSize = s.config.PageSize
	}
	return grid.NewView(c.Rows, c.Columns, grid.Options{
		PageSize:         pageSize,
		EmptyMessage:     s.config.EmptyMessage,
		NoMatchesMessage: s.config.NoMatchesMessage,
		KeyOf:            grid.KeyByField(c.KeyField),
		Formatter:        s.config.Formatter,
		Compare:          s.config.Compare,
		Logger:           s.logger.With(zap.String("collection", c.Name)),
	})
}

// Query opens name and renders it in the state described by params.
func (s *Service) Query(ctx context.Context, name string, params query.ViewParams) (*Collection, grid.Table, error) {
	c, err := s.Open(ctx, name)
	if err != nil {
		return nil, grid.Table{}, err
	}
	view := s.View(c, params.PageSize)
	params.Apply(view)
	return c, view.Render(), nil
}

// Entry is one field of an item detail.
type Entry struct {
	Key   string
	Label string
	Cell  grid.Cell
	Value any
}

// Item is a single row prepared for a key/value detail view.
type Item struct {
	Collection string
	ID         string
	Row        grid.Row
	Entries    []Entry
}

// Item fetches one row and its schema. Entries follow the row's field
// order; schema fields absent from the row are appended with the empty
// marker.
func (s *Service) Item(ctx context.Context, name, id string) (*Item, error) {
	var (
		fields []source.FieldDescriptor
		row    grid.Row
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if fields, err = s.source.FetchCollectionSchema(gctx, name); err != nil {
			fields = nil
		}
		return nil
	})
	g.Go(func() error {
		var err error
		row, err = s.source.FetchRow(gctx, name, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("item %s/%s: %w", name, id, err)
	}

	labels := make(map[string]string, len(fields))
	for _, col := range source.Columns(fields) {
		labels[col.Key] = col.Label()
	}

	item := &Item{Collection: name, ID: id, Row: row}
	seen := make(map[string]bool, row.Len())
	for _, f := range row.Fields() {
		seen[f.Key] = true
		item.Entries = append(item.Entries, s.entry(labels, f.Key, f.Value, true))
	}
	for _, f := range fields {
		if f.Hidden || seen[f.Field] {
			continue
		}
		item.Entries = append(item.Entries, s.entry(labels, f.Field, nil, false))
	}
	return item, nil
}

func (s *Service) entry(labels map[string]string, key string, value any, present bool) Entry {
	label := labels[key]
	if label == "" {
		label = key
	}
	return Entry{
		Key:   key,
		Label: label,
		Cell:  s.config.Formatter.Detail(value, present),
		Value: value,
	}
}
