package grid

import (
	"encoding/json"
	"math"
	"strings"
	"time"
)

// FormatterConfig holds the display settings for cell formatting.
type FormatterConfig struct {
	// EmptyMarker replaces null, missing and unrenderable values.
	EmptyMarker string
	// DateLayout formats date cells.
	DateLayout string
	// DateTimeLayout formats datetime and timestamp cells.
	DateTimeLayout string
	// Location converts datetime and timestamp cells before formatting.
	// Nil keeps the parsed zone. Date cells are never converted.
	Location *time.Location
	// FileFallback labels a file object without any name field.
	FileFallback string
}

// DefaultFormatterConfig returns the default formatter settings.
func DefaultFormatterConfig() FormatterConfig {
	return FormatterConfig{
		EmptyMarker:    EmptyMarker,
		DateLayout:     "2006-01-02",
		DateTimeLayout: "2006-01-02 15:04:05",
		FileFallback:   "[file]",
	}
}

// parseLayouts are tried in order for string timestamps.
var parseLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC1123Z,
	time.RFC1123,
}

var fileLabelKeys = []string{"filename_download", "filename", "title", "id"}
var chipLabelKeys = []string{"title", "name", "id"}

// Formatter maps a column's kind and a raw value to a Cell. It is total:
// every kind and value produces a Cell and nothing panics or errors.
type Formatter struct {
	config FormatterConfig
}

// NewFormatter creates a formatter with default settings.
func NewFormatter() *Formatter {
	return NewFormatterWithConfig(DefaultFormatterConfig())
}

// NewFormatterWithConfig creates a formatter, filling unset fields with
// their defaults.
func NewFormatterWithConfig(config FormatterConfig) *Formatter {
	def := DefaultFormatterConfig()
	if config.EmptyMarker == "" {
		config.EmptyMarker = def.EmptyMarker
	}
	if config.DateLayout == "" {
		config.DateLayout = def.DateLayout
	}
	if config.DateTimeLayout == "" {
		config.DateTimeLayout = def.DateTimeLayout
	}
	if config.FileFallback == "" {
		config.FileFallback = def.FileFallback
	}
	return &Formatter{config: config}
}

// EmptyMarker returns the configured empty marker.
func (f *Formatter) EmptyMarker() string {
	return f.config.EmptyMarker
}

// Cell formats the column's field of row. A missing field renders as the
// empty marker unless the column has its own renderer.
func (f *Formatter) Cell(col Column, row Row) Cell {
	v, ok := row.Get(col.Key)
	if col.Render != nil {
		return col.Render(v, row)
	}
	if !ok {
		return f.empty()
	}
	return f.Format(col, v)
}

// Format maps value to a Cell by col.Kind.
func (f *Formatter) Format(col Column, value any) Cell {
	switch {
	case col.Kind == KindBoolean:
		return f.boolean(value)
	case col.Kind.IsTemporal():
		return f.date(col.Kind, value)
	case col.Kind == KindJSON:
		return f.json(value)
	case col.Kind == KindFile:
		return f.file(col.DisplayKey, value)
	case col.Kind == KindRelation:
		return f.relation(col.DisplayKey, value)
	default:
		return f.plain(value)
	}
}

// Detail formats a value for a key/value detail page: lists are joined,
// objects are pretty-printed JSON, null and missing show the marker.
func (f *Formatter) Detail(value any, present bool) Cell {
	if !present || value == nil {
		return f.empty()
	}
	if isObject(value) {
		s, err := encodeJSONIndent(value)
		if err != nil {
			return f.empty()
		}
		return Cell{Kind: CellJSON, Text: s}
	}
	return f.plain(value)
}

func (f *Formatter) empty() Cell {
	return emptyCell(f.config.EmptyMarker)
}

func (f *Formatter) plain(value any) Cell {
	if value == nil {
		return f.empty()
	}
	s, err := Stringify(value)
	if err != nil || s == "" {
		return f.empty()
	}
	return TextCell(s)
}

func (f *Formatter) boolean(value any) Cell {
	switch v := value.(type) {
	case bool:
		if v {
			return Cell{Kind: CellBool, Bool: BoolTrue, Text: "True"}
		}
		return Cell{Kind: CellBool, Bool: BoolFalse, Text: "False"}
	case *bool:
		if v != nil {
			return f.boolean(*v)
		}
	}
	return Cell{Kind: CellBool, Bool: BoolUnknown, Text: f.config.EmptyMarker}
}

func (f *Formatter) date(kind Kind, value any) Cell {
	if value == nil {
		return f.empty()
	}
	t, ok := parseTime(value)
	if !ok {
		return f.plain(value)
	}

	layout := f.config.DateTimeLayout
	if kind == KindDate {
		layout = f.config.DateLayout
	} else if f.config.Location != nil {
		t = t.In(f.config.Location)
	}
	return Cell{Kind: CellDate, Text: t.Format(layout), Time: t}
}

func (f *Formatter) json(value any) Cell {
	if value == nil {
		return f.empty()
	}
	s, err := encodeJSON(value)
	if err != nil {
		return f.empty()
	}
	return Cell{Kind: CellJSON, Text: s}
}

func (f *Formatter) file(displayKey string, value any) Cell {
	if value == nil {
		return f.empty()
	}
	if _, binary := value.([]byte); binary {
		return Cell{Kind: CellFile, Text: f.config.FileFallback}
	}
	if s, ok := value.(string); ok {
		if s == "" {
			return f.empty()
		}
		return Cell{Kind: CellFile, Text: s, Chips: []Chip{{Label: s, Key: s}}}
	}

	items := asList(value)
	chips := make([]Chip, 0, len(items))
	for _, item := range items {
		chips = append(chips, f.fileChip(displayKey, item))
	}
	if len(chips) == 0 {
		return f.empty()
	}
	return Cell{Kind: CellFile, Text: joinChips(chips), Chips: chips}
}

func (f *Formatter) fileChip(displayKey string, item any) Chip {
	if s, ok := item.(string); ok && s != "" {
		return Chip{Label: s, Key: s}
	}
	if !isObject(item) {
		if s, err := Stringify(item); err == nil && s != "" {
			if _, binary := item.([]byte); !binary {
				return Chip{Label: s, Key: s}
			}
		}
		return Chip{Label: f.config.FileFallback}
	}
	chip := Chip{Label: f.config.FileFallback, Key: labelOf(item, "id")}
	if label := pickLabel(item, displayKey, fileLabelKeys); label != "" {
		chip.Label = label
	}
	return chip
}

func (f *Formatter) relation(displayKey string, value any) Cell {
	items := asList(value)
	chips := make([]Chip, 0, len(items))
	for _, item := range items {
		if item == nil || item == "" {
			continue
		}
		chips = append(chips, f.relationChip(displayKey, item))
	}
	if len(chips) == 0 {
		return Cell{Kind: CellChips, Text: f.config.EmptyMarker, Chips: chips}
	}
	return Cell{Kind: CellChips, Text: joinChips(chips), Chips: chips}
}

func (f *Formatter) relationChip(displayKey string, item any) Chip {
	if isObject(item) {
		key := labelOf(item, "id")
		if label := pickLabel(item, displayKey, chipLabelKeys); label != "" {
			return Chip{Label: label, Key: key}
		}
		if s, err := Stringify(item); err == nil && s != "" {
			return Chip{Label: s, Key: key}
		}
		return Chip{Label: f.config.EmptyMarker, Key: key}
	}
	s, err := Stringify(item)
	if err != nil || s == "" {
		return Chip{Label: f.config.EmptyMarker}
	}
	return Chip{Label: s, Key: s}
}

func joinChips(chips []Chip) string {
	labels := make([]string, len(chips))
	for i, c := range chips {
		labels[i] = c.Label
	}
	return strings.Join(labels, ListSeparator)
}

// pickLabel returns the first non-empty label among displayKey and keys.
func pickLabel(item any, displayKey string, keys []string) string {
	if displayKey != "" {
		if s := labelOf(item, displayKey); s != "" {
			return s
		}
	}
	for _, k := range keys {
		if s := labelOf(item, k); s != "" {
			return s
		}
	}
	return ""
}

func labelOf(item any, key string) string {
	v, ok := lookup(item, key)
	if !ok || v == nil || isObject(v) {
		return ""
	}
	s, err := Stringify(v)
	if err != nil {
		return ""
	}
	return s
}

// lookup reads key from the object shapes rows carry.
func lookup(item any, key string) (any, bool) {
	switch obj := item.(type) {
	case Row:
		return obj.Get(key)
	case *Row:
		if obj == nil {
			return nil, false
		}
		return obj.Get(key)
	case map[string]any:
		v, ok := obj[key]
		return v, ok
	}
	return nil, false
}

func isObject(v any) bool {
	switch v.(type) {
	case Row, *Row, map[string]any:
		return true
	}
	return false
}

// asList normalizes a single value or a list to a list.
func asList(value any) []any {
	switch v := value.(type) {
	case nil:
		return nil
	case []any:
		return v
	case []Row:
		out := make([]any, len(v))
		for i := range v {
			out[i] = v[i]
		}
		return out
	case []map[string]any:
		out := make([]any, len(v))
		for i := range v {
			out[i] = v[i]
		}
		return out
	case []string:
		out := make([]any, len(v))
		for i := range v {
			out[i] = v[i]
		}
		return out
	}
	return []any{value}
}

// parseTime reads strings in common layouts and numbers as Unix
// milliseconds.
func parseTime(value any) (time.Time, bool) {
	switch v := value.(type) {
	case time.Time:
		return v, !v.IsZero()
	case *time.Time:
		if v == nil {
			return time.Time{}, false
		}
		return *v, !v.IsZero()
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return time.Time{}, false
		}
		for _, layout := range parseLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
		return time.Time{}, false
	case json.Number:
		if ms, err := v.Int64(); err == nil {
			return time.UnixMilli(ms).UTC(), true
		}
		if f, err := v.Float64(); err == nil {
			return fromMillis(f)
		}
	case int:
		return time.UnixMilli(int64(v)).UTC(), true
	case int64:
		return time.UnixMilli(v).UTC(), true
	case float64:
		return fromMillis(v)
	}
	return time.Time{}, false
}

func fromMillis(f float64) (time.Time, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return time.Time{}, false
	}
	return time.UnixMilli(int64(f)).UTC(), true
}
