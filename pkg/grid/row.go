package grid

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Field is one key/value pair of a Row.
type Field struct {
	Key   string
	Value any
}

// F is shorthand for building a Field.
func F(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Row is one record of arbitrary key/value data. Keys keep the order in
// which they were first added; a Row has no mutators once built, so the
// engine can hand the same Row to every stage without copying it.
//
// The zero Row is valid and has no fields.
type Row struct {
	fields *orderedmap.OrderedMap[string, any]
}

// NewRow builds a Row from fields in order. A repeated key keeps its first
// position and takes the last value.
func NewRow(fields ...Field) Row {
	m := orderedmap.New[string, any](len(fields))
	for _, f := range fields {
		m.Set(f.Key, f.Value)
	}
	return Row{fields: m}
}

// RowFromMap builds a Row from a Go map. Map iteration order is random, so
// keys are sorted to keep column inference deterministic.
func RowFromMap(values map[string]any) Row {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make([]Field, 0, len(keys))
	for _, k := range keys {
		fields = append(fields, F(k, values[k]))
	}
	return NewRow(fields...)
}

// Get returns the value stored at key and whether the key is present.
// A present key may still hold nil.
func (r Row) Get(key string) (any, bool) {
	if r.fields == nil {
		return nil, false
	}
	return r.fields.Get(key)
}

// Has reports whether key is present.
func (r Row) Has(key string) bool {
	_, ok := r.Get(key)
	return ok
}

// Len returns the number of fields.
func (r Row) Len() int {
	if r.fields == nil {
		return 0
	}
	return r.fields.Len()
}

// Keys returns field names in insertion order.
func (r Row) Keys() []string {
	keys := make([]string, 0, r.Len())
	if r.fields == nil {
		return keys
	}
	for pair := r.fields.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Fields returns a copy of the row's fields in insertion order.
func (r Row) Fields() []Field {
	fields := make([]Field, 0, r.Len())
	if r.fields == nil {
		return fields
	}
	for pair := r.fields.Oldest(); pair != nil; pair = pair.Next() {
		fields = append(fields, F(pair.Key, pair.Value))
	}
	return fields
}

// MarshalJSON encodes the row as a JSON object in key order. NaN and
// infinite floats, which JSON cannot represent, are written as the
// strings "NaN", "+Inf" and "-Inf".
func (r Row) MarshalJSON() ([]byte, error) {
	if r.fields == nil {
		return []byte("{}"), nil
	}
	out := orderedmap.New[string, any]()
	for pair := r.fields.Oldest(); pair != nil; pair = pair.Next() {
		out.Set(pair.Key, JSONSafe(pair.Value))
	}
	return out.MarshalJSON()
}

// JSONSafe replaces non-finite floats in v, including inside lists and
// objects, with their string form. Other values are returned as is.
func JSONSafe(v any) any {
	switch t := v.(type) {
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return strconv.FormatFloat(t, 'g', -1, 64)
		}
	case float32:
		if f := float64(t); math.IsNaN(f) || math.IsInf(f, 0) {
			return strconv.FormatFloat(f, 'g', -1, 32)
		}
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = JSONSafe(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = JSONSafe(e)
		}
		return out
	}
	return v
}

// UnmarshalJSON decodes a JSON object, keeping the document's key order.
// Numbers decode as json.Number so integers beyond 2^53 stay exact.
func (r *Row) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*r = Row{}
		return nil
	}
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return fmt.Errorf("grid: row must be a JSON object, got %.20q", trimmed)
	}

	raw := orderedmap.New[string, json.RawMessage]()
	if err := raw.UnmarshalJSON(trimmed); err != nil {
		return fmt.Errorf("grid: decode row: %w", err)
	}
	m := orderedmap.New[string, any]()
	for pair := raw.Oldest(); pair != nil; pair = pair.Next() {
		v, err := decodeValue(pair.Value)
		if err != nil {
			return fmt.Errorf("grid: decode row field %q: %w", pair.Key, err)
		}
		m.Set(pair.Key, v)
	}
	*r = Row{fields: m}
	return nil
}

func decodeValue(raw json.RawMessage) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

var _ json.Marshaler = Row{}
var _ json.Unmarshaler = (*Row)(nil)
