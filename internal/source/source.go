// Package source defines the data-fetch collaborator the explorer reads
// from and maps its schema onto grid columns. Backends live in the
// subpackages.
package source

import (
	"context"
	"errors"

	"github.com/conduit-lang/explorer/pkg/grid"
)

// ErrNotFound is returned when a collection or item does not exist.
// It is distinct from an empty result.
var ErrNotFound = errors.New("source: not found")

// Collection describes one browsable collection or table.
type Collection struct {
	Name      string `json:"collection"`
	Note      string `json:"note,omitempty"`
	Icon      string `json:"icon,omitempty"`
	Singleton bool   `json:"singleton,omitempty"`
	System    bool   `json:"system,omitempty"`
}

// FieldDescriptor describes one field of a collection. Type uses the
// content API's vocabulary (string, text, integer, bigInteger, float,
// decimal, boolean, date, dateTime, timestamp, time, json, csv, uuid,
// alias); SQL and document backends translate their own types into it.
type FieldDescriptor struct {
	Field     string   `json:"field"`
	Type      string   `json:"type"`
	Interface string   `json:"interface,omitempty"`
	Special   []string `json:"special,omitempty"`
	Hidden    bool     `json:"hidden,omitempty"`
	Note      string   `json:"note,omitempty"`
	// DisplayTemplate is the related item's label template, e.g. "{{title}}".
	DisplayTemplate string `json:"display_template,omitempty"`
	// Related names the collection a relation field points at.
	Related    string `json:"related,omitempty"`
	PrimaryKey bool   `json:"primary_key,omitempty"`
	Nullable   bool   `json:"nullable,omitempty"`
}

// HasSpecial reports whether the field carries the given special flag.
func (f FieldDescriptor) HasSpecial(flag string) bool {
	for _, s := range f.Special {
		if s == flag {
			return true
		}
	}
	return false
}

// Source fetches collections, schemas and rows. Every method may fail;
// failure is reported as an error and never as an empty result.
type Source interface {
	// ListCollections returns the user collections, system ones excluded.
	ListCollections(ctx context.Context) ([]Collection, error)
	// FetchCollectionSchema returns the fields of a collection in order.
	FetchCollectionSchema(ctx context.Context, name string) ([]FieldDescriptor, error)
	// FetchRows returns at most limit rows. limit <= 0 means the backend default.
	FetchRows(ctx context.Context, name string, limit int) ([]grid.Row, error)
	// FetchRow returns one row by primary key, or ErrNotFound.
	FetchRow(ctx context.Context, name, id string) (grid.Row, error)
	// Close releases connections.
	Close() error
}

// PrimaryKey returns the primary key field name, defaulting to "id".
func PrimaryKey(fields []FieldDescriptor) string {
	for _, f := range fields {
		if f.PrimaryKey {
			return f.Field
		}
	}
	return "id"
}
