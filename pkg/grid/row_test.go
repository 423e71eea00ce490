package grid

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRow_KeepsInsertionOrder(t *testing.T) {
	row := NewRow(F("z", 1), F("a", 2), F("m", nil))

	assert.Equal(t, []string{"z", "a", "m"}, row.Keys())
	assert.Equal(t, 3, row.Len())

	v, ok := row.Get("m")
	assert.True(t, ok, "present key holding nil must report presence")
	assert.Nil(t, v)

	_, ok = row.Get("missing")
	assert.False(t, ok)
}

func TestNewRow_RepeatedKey(t *testing.T) {
	row := NewRow(F("a", 1), F("b", 2), F("a", 3))

	assert.Equal(t, []string{"a", "b"}, row.Keys())
	v, _ := row.Get("a")
	assert.Equal(t, 3, v)
}

func TestRow_ZeroValue(t *testing.T) {
	var row Row

	assert.Equal(t, 0, row.Len())
	assert.Empty(t, row.Keys())
	assert.Empty(t, row.Fields())
	assert.False(t, row.Has("id"))

	data, err := json.Marshal(row)
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(data))
}

func TestRowFromMap_SortsKeys(t *testing.T) {
	row := RowFromMap(map[string]any{"title": "x", "id": 1, "body": "y"})
	assert.Equal(t, []string{"body", "id", "title"}, row.Keys())
}

func TestRow_UnmarshalJSON_PreservesDocumentOrder(t *testing.T) {
	var rows []Row
	err := json.Unmarshal([]byte(`[{"name":"Ann","id":1,"tags":["a","b"]},{"id":2}]`), &rows)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, []string{"name", "id", "tags"}, rows[0].Keys())
	id, _ := rows[0].Get("id")
	assert.Equal(t, json.Number("1"), id)
	tags, _ := rows[0].Get("tags")
	assert.Equal(t, []any{"a", "b"}, tags)

	assert.Equal(t, []string{"id"}, rows[1].Keys())
}

func TestRow_UnmarshalJSON_KeepsLargeIntegers(t *testing.T) {
	var row Row
	require.NoError(t, json.Unmarshal([]byte(`{"id":9007199254740993,"price":12.50,"meta":{"n":1}}`), &row))

	id, _ := row.Get("id")
	s, err := Stringify(id)
	require.NoError(t, err)
	assert.Equal(t, "9007199254740993", s)

	price, _ := row.Get("price")
	assert.Equal(t, json.Number("12.50"), price)

	meta, _ := row.Get("meta")
	assert.Equal(t, map[string]any{"n": json.Number("1")}, meta)
}

func TestRow_MarshalJSON_NonFiniteFloats(t *testing.T) {
	row := NewRow(
		F("a", math.NaN()),
		F("b", math.Inf(1)),
		F("c", []any{math.Inf(-1), 1.5}),
		F("d", map[string]any{"x": math.NaN()}),
		F("e", 2.5),
	)

	data, err := json.Marshal(row)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":"NaN","b":"+Inf","c":["-Inf",1.5],"d":{"x":"NaN"},"e":2.5}`, string(data))

	v, _ := row.Get("a")
	assert.True(t, math.IsNaN(v.(float64)), "the row itself is not modified")
}

func TestRow_UnmarshalJSON_RejectsNonObject(t *testing.T) {
	var row Row
	assert.Error(t, json.Unmarshal([]byte(`[1,2]`), &row))

	require.NoError(t, json.Unmarshal([]byte(`null`), &row))
	assert.Equal(t, 0, row.Len())
}

func TestRow_MarshalJSON_Order(t *testing.T) {
	row := NewRow(F("b", 1), F("a", "x"))
	data, err := json.Marshal(row)
	require.NoError(t, err)
	assert.Equal(t, `{"b":1,"a":"x"}`, string(data))
}
