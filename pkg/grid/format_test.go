package grid

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allKinds = []Kind{
	KindDefault, KindString, KindText, KindInteger, KindFloat, KindDecimal,
	KindBoolean, KindDate, KindDateTime, KindTimestamp, KindJSON, KindFile, KindRelation,
}

func TestFormatter_Totality(t *testing.T) {
	f := NewFormatter()
	values := []any{nil, 0, "", false, []any{}, map[string]any{}, math.NaN(), make(chan int), []byte{0xff}}

	for _, kind := range allKinds {
		for _, v := range values {
			assert.NotPanics(t, func() {
				cell := f.Format(Column{Key: "k", Kind: kind}, v)
				assert.NotEmpty(t, cell.Text, "kind %q value %#v", kind, v)
			})
		}
	}
}

func TestFormatter_BooleanTriState(t *testing.T) {
	f := NewFormatter()
	col := Column{Key: "active", Kind: KindBoolean}

	yes := f.Format(col, true)
	no := f.Format(col, false)
	unknown := f.Format(col, nil)

	assert.Equal(t, BoolTrue, yes.Bool)
	assert.Equal(t, BoolFalse, no.Bool)
	assert.Equal(t, BoolUnknown, unknown.Bool)
	assert.NotEqual(t, no.Text, unknown.Text)
	assert.NotEqual(t, yes.Text, unknown.Text)
	assert.Equal(t, CellBool, unknown.Kind)

	assert.Equal(t, BoolUnknown, f.Format(col, "true").Bool)
	v := true
	assert.Equal(t, BoolTrue, f.Format(col, &v).Bool)
}

func TestFormatter_Dates(t *testing.T) {
	est := time.FixedZone("EST", -5*60*60)
	f := NewFormatterWithConfig(FormatterConfig{Location: est})

	tests := []struct {
		name  string
		kind  Kind
		value any
		want  string
		kind2 CellKind
	}{
		{"date only", KindDate, "2024-03-01", "2024-03-01", CellDate},
		{"date ignores location", KindDate, "2024-03-01T01:00:00Z", "2024-03-01", CellDate},
		{"rfc3339 converted", KindDateTime, "2024-03-01T15:30:00Z", "2024-03-01 10:30:00", CellDate},
		{"naive datetime", KindTimestamp, "2024-03-01 15:30:00", "2024-03-01 10:30:00", CellDate},
		{"epoch millis", KindTimestamp, float64(0), "1969-12-31 19:00:00", CellDate},
		{"unparseable falls back to raw", KindDateTime, "next tuesday", "next tuesday", CellText},
		{"empty string", KindDate, "", EmptyMarker, CellEmpty},
		{"nil", KindDateTime, nil, EmptyMarker, CellEmpty},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cell := f.Format(Column{Kind: tt.kind}, tt.value)
			assert.Equal(t, tt.want, cell.Text)
			assert.Equal(t, tt.kind2, cell.Kind)
		})
	}
}

func TestFormatter_JSON(t *testing.T) {
	f := NewFormatter()
	col := Column{Kind: KindJSON}

	assert.Equal(t, `{"a":[1,2]}`, f.Format(col, map[string]any{"a": []any{1, 2}}).Text)
	assert.Equal(t, CellJSON, f.Format(col, []any{}).Kind)
	assert.Equal(t, EmptyMarker, f.Format(col, nil).Text)
	assert.Equal(t, CellEmpty, f.Format(col, map[string]any{"n": math.Inf(1)}).Kind)
}

func TestFormatter_File(t *testing.T) {
	f := NewFormatter()

	tests := []struct {
		name  string
		col   Column
		value any
		want  string
	}{
		{"plain id", Column{Kind: KindFile}, "3f2a-uuid", "3f2a-uuid"},
		{"display key wins", Column{Kind: KindFile, DisplayKey: "label"},
			map[string]any{"label": "Cover", "filename_download": "a.png", "id": "x"}, "Cover"},
		{"filename download", Column{Kind: KindFile},
			map[string]any{"filename_download": "a.png", "filename": "b.png", "title": "T", "id": "x"}, "a.png"},
		{"filename", Column{Kind: KindFile}, map[string]any{"filename": "b.png", "id": "x"}, "b.png"},
		{"title", Column{Kind: KindFile}, NewRow(F("title", "Logo"), F("id", "x")), "Logo"},
		{"id", Column{Kind: KindFile}, map[string]any{"id": "x"}, "x"},
		{"nothing", Column{Kind: KindFile}, map[string]any{"width": 10}, "[file]"},
		{"binary never rendered", Column{Kind: KindFile}, []byte{0x89, 0x50, 0x4e, 0x47}, "[file]"},
		{"list", Column{Kind: KindFile}, []any{"a", map[string]any{"filename": "b.png"}}, "a, b.png"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cell := f.Format(tt.col, tt.value)
			assert.Equal(t, CellFile, cell.Kind)
			assert.Equal(t, tt.want, cell.Text)
		})
	}
}

func TestFormatter_Relation(t *testing.T) {
	f := NewFormatter()

	t.Run("single object becomes one chip", func(t *testing.T) {
		cell := f.Format(Column{Kind: KindRelation}, map[string]any{"id": 7, "name": "Ann"})
		require.Len(t, cell.Chips, 1)
		assert.Equal(t, Chip{Label: "Ann", Key: "7"}, cell.Chips[0])
	})

	t.Run("list uses preference order", func(t *testing.T) {
		cell := f.Format(Column{Kind: KindRelation, DisplayKey: "slug"}, []any{
			map[string]any{"slug": "first", "title": "T"},
			map[string]any{"title": "Second", "name": "N"},
			map[string]any{"name": "Third", "id": 3},
			map[string]any{"id": 4},
			map[string]any{"color": "red"},
			5,
		})
		labels := make([]string, len(cell.Chips))
		for i, c := range cell.Chips {
			labels[i] = c.Label
		}
		assert.Equal(t, []string{"first", "Second", "Third", "4", `{"color":"red"}`, "5"}, labels)
		assert.Equal(t, CellChips, cell.Kind)
	})

	t.Run("nil and empty list have no chips", func(t *testing.T) {
		for _, v := range []any{nil, []any{}} {
			cell := f.Format(Column{Kind: KindRelation}, v)
			assert.Empty(t, cell.Chips)
			assert.True(t, cell.IsEmpty())
			assert.Equal(t, EmptyMarker, cell.Text)
		}
	})
}

func TestFormatter_Default(t *testing.T) {
	f := NewFormatter()
	col := Column{Key: "v"}

	assert.Equal(t, EmptyMarker, f.Format(col, nil).Text)
	assert.Equal(t, EmptyMarker, f.Format(col, "").Text)
	assert.Equal(t, "0", f.Format(col, 0).Text)
	assert.Equal(t, "false", f.Format(col, false).Text)
	assert.Equal(t, "a, b", f.Format(col, []any{"a", "b"}).Text)
	assert.Equal(t, `{"k":1}`, f.Format(col, map[string]any{"k": 1}).Text)
}

func TestFormatter_CellMissingField(t *testing.T) {
	f := NewFormatter()
	row := NewRow(F("id", 1))

	assert.Equal(t, CellEmpty, f.Cell(Column{Key: "name"}, row).Kind)
	assert.Equal(t, CellEmpty, f.Cell(Column{Key: "active", Kind: KindBoolean}, row).Kind)

	custom := Column{Key: "name", Render: func(v any, r Row) Cell {
		id, _ := r.Get("id")
		s, _ := Stringify(id)
		return TextCell("#" + s)
	}}
	assert.Equal(t, "#1", f.Cell(custom, row).Text)
}

func TestFormatter_Detail(t *testing.T) {
	f := NewFormatterWithConfig(FormatterConfig{EmptyMarker: "n/a"})

	assert.Equal(t, "n/a", f.Detail(nil, true).Text)
	assert.Equal(t, "n/a", f.Detail("x", false).Text)
	assert.Equal(t, "a, b", f.Detail([]any{"a", "b"}, true).Text)

	cell := f.Detail(map[string]any{"a": 1}, true)
	assert.Equal(t, CellJSON, cell.Kind)
	assert.Equal(t, "{\n  \"a\": 1\n}", cell.Text)
}
