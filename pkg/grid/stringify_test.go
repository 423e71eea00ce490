package grid

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringify(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"nil", nil, ""},
		{"string", "Hello", "Hello"},
		{"bool", false, "false"},
		{"int", 42, "42"},
		{"int64", int64(-7), "-7"},
		{"uint8", uint8(9), "9"},
		{"whole float", float64(3), "3"},
		{"fraction", 2.5, "2.5"},
		{"huge float", 1e21, "1e+21"},
		{"nan", math.NaN(), "NaN"},
		{"json number", json.Number("12.50"), "12.50"},
		{"bytes", []byte("raw"), "raw"},
		{"time", time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), "2024-03-01T10:00:00Z"},
		{"list", []any{"a", 1.0, nil, true}, "a, 1, , true"},
		{"string list", []string{"x", "y"}, "x, y"},
		{"empty list", []any{}, ""},
		{"object", map[string]any{"b": 2, "a": "<x>"}, `{"a":"<x>","b":2}`},
		{"empty object", map[string]any{}, "{}"},
		{"row", NewRow(F("z", 1), F("a", 2)), `{"z":1,"a":2}`},
		{"list of objects", []any{map[string]any{"id": 1}}, `{"id":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Stringify(tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStringify_Unserializable(t *testing.T) {
	values := []any{
		make(chan int),
		map[string]any{"n": math.NaN()},
		[]any{"ok", func() {}},
	}
	for _, v := range values {
		_, err := Stringify(v)
		assert.ErrorIs(t, err, ErrUnserializable)
	}
}

func TestSortKey(t *testing.T) {
	assert.Equal(t, "", SortKey(nil))
	assert.Equal(t, "Bob", SortKey("Bob"))
	assert.Equal(t, "10", SortKey(10))
	assert.Equal(t, "true", SortKey(true))
	assert.Equal(t, `[1,2]`, SortKey([]any{1, 2}))
	assert.Equal(t, "", SortKey(make(chan int)))
}
