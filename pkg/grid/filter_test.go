package grid

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func people() []Row {
	return []Row{
		NewRow(F("id", 1), F("name", "Ann")),
		NewRow(F("id", 2), F("name", "Bob")),
	}
}

func TestFilter_Scenario(t *testing.T) {
	rows := people()
	cols := ResolveColumns(rows, nil)

	got := Filter(rows, cols, "bob")
	assert.Len(t, got, 1)
	id, _ := got[0].Get("id")
	assert.Equal(t, 2, id)

	assert.Equal(t, rows, Filter(rows, cols, ""))
	assert.Empty(t, Filter(rows, cols, " bob"))
}

func TestFilter(t *testing.T) {
	rows := []Row{
		NewRow(F("id", 1), F("title", "Hello World"), F("tags", []any{"go", "grid"}), F("meta", map[string]any{"lang": "EN"})),
		NewRow(F("id", 2), F("title", nil), F("tags", []any{}), F("meta", nil)),
		NewRow(F("id", 3), F("title", "Ünïcode Straße"), F("active", true)),
		NewRow(F("id", 30)),
	}
	cols := []Column{{Key: "id"}, {Key: "title"}, {Key: "tags"}, {Key: "meta"}, {Key: "active"}}

	tests := []struct {
		name  string
		query string
		want  []int
	}{
		{"blank keeps all", "   ", []int{0, 1, 2, 3}},
		{"case insensitive", "hello", []int{0}},
		{"number as text", "3", []int{2, 3}},
		{"list elements", "grid", []int{0}},
		{"joined list separator", "go, grid", []int{0}},
		{"object json", `"lang":"en"`, []int{0}},
		{"bool", "TRUE", []int{2}},
		{"unicode fold", "STRASSE", []int{2}},
		{"null never matches", "null", nil},
		{"no match", "zzz", nil},
		{"surrounding spaces are literal", " world", []int{0}},
		{"leading space not trimmed", " hello", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(rows, cols, tt.query)
			var want []Row
			for _, i := range tt.want {
				want = append(want, rows[i])
			}
			if want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, want, got)
		})
	}
}

func TestFilter_Subset(t *testing.T) {
	rows := people()
	cols := ResolveColumns(rows, nil)

	for _, q := range []string{"", "a", "n", "o", "1", "x"} {
		got := Filter(rows, cols, q)
		assert.LessOrEqual(t, len(got), len(rows))
		for _, r := range got {
			assert.Contains(t, rows, r)
		}
	}
}

func TestFilter_Idempotent(t *testing.T) {
	rows := people()
	cols := ResolveColumns(rows, nil)

	for _, q := range []string{"", "a", "b", "2"} {
		once := Filter(rows, cols, q)
		assert.Equal(t, once, Filter(once, cols, q), "query %q", q)
	}
}

func TestFilter_UnserializableColumnDoesNotDropRow(t *testing.T) {
	rows := []Row{
		NewRow(F("bad", map[string]any{"n": math.NaN()}), F("name", "keep me")),
		NewRow(F("bad", make(chan int)), F("name", "other")),
	}
	cols := []Column{{Key: "bad"}, {Key: "name"}}

	got, stats := FilterWithStats(rows, cols, "keep")
	assert.Equal(t, []Row{rows[0]}, got)
	assert.Equal(t, 2, stats.Skipped)
}

func TestFilter_DoesNotMutateInput(t *testing.T) {
	rows := people()
	before := append([]Row(nil), rows...)
	cols := ResolveColumns(rows, nil)

	got := Filter(rows, cols, "")
	got[0] = NewRow()

	assert.Equal(t, before, rows)
}
