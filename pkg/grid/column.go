package grid

// Kind is the semantic tag that selects how a column's cells are formatted.
type Kind string

// Field kinds understood by the formatter. The zero Kind formats with the
// default rules.
const (
	KindDefault   Kind = ""
	KindString    Kind = "string"
	KindText      Kind = "text"
	KindInteger   Kind = "integer"
	KindFloat     Kind = "float"
	KindDecimal   Kind = "decimal"
	KindBoolean   Kind = "boolean"
	KindDate      Kind = "date"
	KindDateTime  Kind = "datetime"
	KindTimestamp Kind = "timestamp"
	KindJSON      Kind = "json"
	KindFile      Kind = "file"
	KindRelation  Kind = "relation"
)

// IsTemporal reports whether cells of this kind are parsed as timestamps.
func (k Kind) IsTemporal() bool {
	return k == KindDate || k == KindDateTime || k == KindTimestamp
}

// IsNumeric reports whether cells of this kind hold numbers.
func (k Kind) IsNumeric() bool {
	return k == KindInteger || k == KindFloat || k == KindDecimal
}

// RenderFunc overrides the formatter for one column.
type RenderFunc func(value any, row Row) Cell

// Column is a named, optionally typed projection of a row.
type Column struct {
	// Key is the row field the column reads.
	Key string
	// Header is the label shown above the column. Empty means Key.
	Header string
	// Kind selects the formatting rules.
	Kind Kind
	// DisplayKey is the preferred label field for file and relation values.
	DisplayKey string
	// Render, when set, replaces the formatter for this column.
	Render RenderFunc
}

// Label returns the header text.
func (c Column) Label() string {
	if c.Header != "" {
		return c.Header
	}
	return c.Key
}

// ResolveColumns returns the columns to render.
//
// Explicit columns are returned as given, duplicates included. A non-nil
// empty slice is explicit and renders no columns. Only a nil slice is
// inferred, from the key order of the first row only. This is not a union of every row's keys: a row shaped differently
// from the first shows empty markers for keys it lacks and hides keys the
// first row lacks. Zero rows yield zero columns.
func ResolveColumns(rows []Row, explicit []Column) []Column {
	if explicit != nil {
		return explicit
	}
	if len(rows) == 0 {
		return []Column{}
	}

	keys := rows[0].Keys()
	columns := make([]Column, 0, len(keys))
	for _, k := range keys {
		columns = append(columns, Column{Key: k, Header: k})
	}
	return columns
}
