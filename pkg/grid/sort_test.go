package grid

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"
)

func names(rows []Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		v, _ := r.Get("name")
		s, _ := Stringify(v)
		out[i] = s
	}
	return out
}

func TestSortState_Toggle(t *testing.T) {
	tests := []struct {
		name  string
		state SortState
		key   string
		want  SortState
	}{
		{"none to asc", SortState{}, "name", SortState{Key: "name", Direction: Ascending}},
		{"asc to desc", SortState{Key: "name", Direction: Ascending}, "name", SortState{Key: "name", Direction: Descending}},
		{"desc to none", SortState{Key: "name", Direction: Descending}, "name", SortState{}},
		{"other key restarts", SortState{Key: "id", Direction: Descending}, "name", SortState{Key: "name", Direction: Ascending}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.state.Toggle(tt.key))
		})
	}
}

func TestSortState_ThreeClicksReturnToNone(t *testing.T) {
	var s SortState
	s = s.Toggle("k").Toggle("k").Toggle("k")
	assert.True(t, s.IsNone())
	assert.Equal(t, SortState{}, s)
}

func TestSortState_Indicator(t *testing.T) {
	asc := SortState{Key: "name", Direction: Ascending}
	assert.Equal(t, " ▲", asc.Indicator("name"))
	assert.Equal(t, "", asc.Indicator("id"))
	assert.Equal(t, " ▼", asc.Toggle("name").Indicator("name"))
	assert.Equal(t, "", SortState{}.Indicator("name"))
}

func TestParseSort(t *testing.T) {
	assert.Equal(t, SortState{}, ParseSort(""))
	assert.Equal(t, SortState{}, ParseSort("-"))
	assert.Equal(t, SortState{Key: "title", Direction: Ascending}, ParseSort("title"))
	assert.Equal(t, SortState{Key: "title", Direction: Descending}, ParseSort("-title"))

	for _, s := range []SortState{{}, {Key: "a", Direction: Ascending}, {Key: "a", Direction: Descending}} {
		assert.Equal(t, s, ParseSort(s.Param()))
	}
}

func TestSort_NoneIsPassthrough(t *testing.T) {
	rows := []Row{NewRow(F("name", "b")), NewRow(F("name", "a"))}
	assert.Equal(t, rows, Sort(rows, SortState{}, nil))
}

func TestSort_Collation(t *testing.T) {
	rows := []Row{
		NewRow(F("name", "banana")),
		NewRow(F("name", "Apple")),
		NewRow(F("name", nil)),
		NewRow(F("name", "cherry")),
		NewRow(),
	}

	asc := Sort(rows, SortState{Key: "name", Direction: Ascending}, nil)
	assert.Equal(t, []string{"", "", "Apple", "banana", "cherry"}, names(asc))

	desc := Sort(rows, SortState{Key: "name", Direction: Descending}, nil)
	assert.Equal(t, []string{"cherry", "banana", "Apple", "", ""}, names(desc))
}

func TestSort_NonStringValuesUseSerializedForm(t *testing.T) {
	rows := []Row{
		NewRow(F("name", 9)),
		NewRow(F("name", 10)),
		NewRow(F("name", 2)),
	}
	got := Sort(rows, SortState{Key: "name", Direction: Ascending}, strings.Compare)
	assert.Equal(t, []string{"10", "2", "9"}, names(got))
}

func TestSort_TiesKeepInputOrder(t *testing.T) {
	rows := []Row{
		NewRow(F("id", 1), F("group", "b")),
		NewRow(F("id", 2), F("group", "a")),
		NewRow(F("id", 3), F("group", "b")),
		NewRow(F("id", 4), F("group", "a")),
	}
	ids := func(rs []Row) []any {
		out := make([]any, len(rs))
		for i, r := range rs {
			out[i], _ = r.Get("id")
		}
		return out
	}

	asc := Sort(rows, SortState{Key: "group", Direction: Ascending}, CollatorComparator(language.English))
	assert.Equal(t, []any{2, 4, 1, 3}, ids(asc))

	desc := Sort(rows, SortState{Key: "group", Direction: Descending}, nil)
	assert.Equal(t, []any{1, 3, 2, 4}, ids(desc))
}

func TestSort_DoesNotMutateInput(t *testing.T) {
	rows := []Row{NewRow(F("name", "b")), NewRow(F("name", "a"))}
	_ = Sort(rows, SortState{Key: "name", Direction: Ascending}, nil)
	assert.Equal(t, []string{"b", "a"}, names(rows))
}
