// Package memory is a Source over collections held in memory, loaded
// from a JSON document or built in code.
package memory

import (
	"context"
	"fmt"
	"os"
	"sync"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/conduit-lang/explorer/internal/source"
	"github.com/conduit-lang/explorer/pkg/grid"
)

// Collection is one in-memory collection.
type Collection struct {
	Note   string                   `json:"note,omitempty"`
	Fields []source.FieldDescriptor `json:"fields,omitempty"`
	Rows   []grid.Row               `json:"rows"`
}

// Source serves collections in the order they were added.
type Source struct {
	mu          sync.RWMutex
	collections *orderedmap.OrderedMap[string, Collection]
}

// New creates an empty source.
func New() *Source {
	return &Source{collections: orderedmap.New[string, Collection]()}
}

// Load reads a JSON document of the form
//
//	{"posts": {"note": "...", "fields": [...], "rows": [{...}, ...]}, ...}
//
// keeping the document's collection and field order.
func Load(path string) (*Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes the document format read by Load.
func Parse(data []byte) (*Source, error) {
	m := orderedmap.New[string, Collection]()
	if err := m.UnmarshalJSON(data); err != nil {
		return nil, fmt.Errorf("decode collections: %w", err)
	}
	return &Source{collections: m}, nil
}

// Add stores c under name, replacing an existing collection in place.
func (s *Source) Add(name string, c Collection) *Source {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections.Set(name, c)
	return s
}

func (s *Source) get(name string) (Collection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.collections.Get(name)
	if !ok {
		return Collection{}, fmt.Errorf("collection %q: %w", name, source.ErrNotFound)
	}
	return c, nil
}

// ListCollections returns every collection in insertion order.
func (s *Source) ListCollections(ctx context.Context) ([]source.Collection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]source.Collection, 0, s.collections.Len())
	for pair := s.collections.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, source.Collection{Name: pair.Key, Note: pair.Value.Note})
	}
	return out, nil
}

// FetchCollectionSchema returns the declared fields, which may be empty.
func (s *Source) FetchCollectionSchema(ctx context.Context, name string) ([]source.FieldDescriptor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c, err := s.get(name)
	if err != nil {
		return nil, err
	}
	return append([]source.FieldDescriptor(nil), c.Fields...), nil
}

// FetchRows returns the first limit rows; limit <= 0 returns all.
func (s *Source) FetchRows(ctx context.Context, name string, limit int) ([]grid.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c, err := s.get(name)
	if err != nil {
		return nil, err
	}
	rows := c.Rows
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return append([]grid.Row(nil), rows...), nil
}

// FetchRow finds the row whose primary key stringifies to id.
func (s *Source) FetchRow(ctx context.Context, name, id string) (grid.Row, error) {
	if err := ctx.Err(); err != nil {
		return grid.Row{}, err
	}
	c, err := s.get(name)
	if err != nil {
		return grid.Row{}, err
	}
	pk := source.PrimaryKey(c.Fields)
	for _, row := range c.Rows {
		v, ok := row.Get(pk)
		if !ok || v == nil {
			continue
		}
		if key, err := grid.Stringify(v); err == nil && key == id {
			return row, nil
		}
	}
	return grid.Row{}, fmt.Errorf("%s/%s: %w", name, id, source.ErrNotFound)
}

// Close is a no-op.
func (s *Source) Close() error { return nil }

var _ source.Source = (*Source)(nil)
