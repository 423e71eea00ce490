package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/explorer/pkg/grid"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name  string
		field FieldDescriptor
		want  grid.Kind
	}{
		{"string", FieldDescriptor{Type: "string"}, grid.KindString},
		{"uuid", FieldDescriptor{Type: "uuid"}, grid.KindString},
		{"text", FieldDescriptor{Type: "text"}, grid.KindText},
		{"big integer", FieldDescriptor{Type: "bigInteger"}, grid.KindInteger},
		{"float", FieldDescriptor{Type: "float"}, grid.KindFloat},
		{"decimal", FieldDescriptor{Type: "decimal"}, grid.KindDecimal},
		{"boolean", FieldDescriptor{Type: "boolean"}, grid.KindBoolean},
		{"date", FieldDescriptor{Type: "date"}, grid.KindDate},
		{"datetime", FieldDescriptor{Type: "dateTime"}, grid.KindDateTime},
		{"timestamp", FieldDescriptor{Type: "timestamp"}, grid.KindTimestamp},
		{"json", FieldDescriptor{Type: "json"}, grid.KindJSON},
		{"file by special", FieldDescriptor{Type: "uuid", Special: []string{"file"}}, grid.KindFile},
		{"image by interface", FieldDescriptor{Type: "uuid", Interface: "file-image"}, grid.KindFile},
		{"many to one", FieldDescriptor{Type: "integer", Special: []string{"m2o"}}, grid.KindRelation},
		{"one to many", FieldDescriptor{Type: "alias", Special: []string{"o2m"}}, grid.KindRelation},
		{"cast boolean", FieldDescriptor{Type: "integer", Special: []string{"cast-boolean"}}, grid.KindBoolean},
		{"date created", FieldDescriptor{Type: "string", Special: []string{"date-created"}}, grid.KindTimestamp},
		{"unknown", FieldDescriptor{Type: "geometry"}, grid.KindDefault},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.field))
		})
	}
}

func TestColumns(t *testing.T) {
	fields := []FieldDescriptor{
		{Field: "id", Type: "integer", PrimaryKey: true},
		{Field: "secret", Type: "string", Hidden: true},
		{Field: "divider", Type: "alias", Special: []string{"alias", "no-data"}},
		{Field: "author", Type: "uuid", Special: []string{"m2o"}, DisplayTemplate: "{{first_name}} {{last_name}}"},
		{Field: "date_created", Type: "timestamp"},
	}

	cols := Columns(fields)
	require.Len(t, cols, 3)

	assert.Equal(t, grid.Column{Key: "id", Header: "Id", Kind: grid.KindInteger}, cols[0])
	assert.Equal(t, "author", cols[1].Key)
	assert.Equal(t, grid.KindRelation, cols[1].Kind)
	assert.Equal(t, "first_name", cols[1].DisplayKey)
	assert.Equal(t, "Date Created", cols[2].Header)
}

func TestColumns_NoSchema(t *testing.T) {
	assert.Nil(t, Columns(nil))
	assert.Nil(t, Columns([]FieldDescriptor{}))

	hidden := Columns([]FieldDescriptor{{Field: "secret", Type: "string", Hidden: true}})
	assert.NotNil(t, hidden)
	assert.Empty(t, hidden)
}

func TestPrimaryKey(t *testing.T) {
	assert.Equal(t, "id", PrimaryKey(nil))
	assert.Equal(t, "slug", PrimaryKey([]FieldDescriptor{{Field: "title"}, {Field: "slug", PrimaryKey: true}}))
}
