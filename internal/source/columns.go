package source

import (
	xstrings "github.com/conduit-lang/explorer/internal/util/strings"
	"github.com/conduit-lang/explorer/pkg/grid"
)

var relationSpecials = []string{"m2o", "o2m", "m2m", "m2a", "translations"}

// KindOf maps a field descriptor to the grid kind that formats it.
func KindOf(f FieldDescriptor) grid.Kind {
	if f.HasSpecial("file") || f.HasSpecial("files") ||
		f.Interface == "file" || f.Interface == "file-image" || f.Interface == "files" {
		return grid.KindFile
	}
	for _, s := range relationSpecials {
		if f.HasSpecial(s) {
			return grid.KindRelation
		}
	}
	if f.HasSpecial("cast-boolean") {
		return grid.KindBoolean
	}
	if f.HasSpecial("cast-json") {
		return grid.KindJSON
	}
	if f.HasSpecial("date-created") || f.HasSpecial("date-updated") {
		return grid.KindTimestamp
	}

	switch f.Type {
	case "boolean":
		return grid.KindBoolean
	case "integer", "bigInteger":
		return grid.KindInteger
	case "float":
		return grid.KindFloat
	case "decimal":
		return grid.KindDecimal
	case "date":
		return grid.KindDate
	case "dateTime":
		return grid.KindDateTime
	case "timestamp":
		return grid.KindTimestamp
	case "json", "csv":
		return grid.KindJSON
	case "text":
		return grid.KindText
	case "string", "uuid", "hash", "time":
		return grid.KindString
	}
	return grid.KindDefault
}

// Columns builds list columns from a collection schema. Hidden fields
// and alias fields that carry no data are skipped. Headers are humanized
// field names and relation labels come from the display template.
// Without fields it returns nil so the grid infers columns from the rows.
func Columns(fields []FieldDescriptor) []grid.Column {
	if len(fields) == 0 {
		return nil
	}
	cols := make([]grid.Column, 0, len(fields))
	for _, f := range fields {
		if f.Hidden || f.Field == "" {
			continue
		}
		kind := KindOf(f)
		if f.Type == "alias" && kind != grid.KindRelation && kind != grid.KindFile {
			continue
		}
		cols = append(cols, grid.Column{
			Key:        f.Field,
			Header:     xstrings.Humanize(f.Field),
			Kind:       kind,
			DisplayKey: xstrings.TemplateField(f.DisplayTemplate),
		})
	}
	return cols
}
