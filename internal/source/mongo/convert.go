package mongo

import (
	"fmt"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/conduit-lang/explorer/internal/source"
	"github.com/conduit-lang/explorer/pkg/grid"
)

// toRow converts a document into a row, keeping field order.
func toRow(doc bson.D) grid.Row {
	fields := make([]grid.Field, len(doc))
	for i, e := range doc {
		fields[i] = grid.F(e.Key, normalize(e.Value))
	}
	return grid.NewRow(fields...)
}

// normalize maps BSON values onto the plain values the grid formats:
// nested documents become rows, ObjectIDs hex strings, dates RFC 3339.
func normalize(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case bson.D:
		return toRow(val)
	case bson.M:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = normalize(item)
		}
		return grid.RowFromMap(out)
	case bson.A:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalize(item)
		}
		return out
	case bson.ObjectID:
		return val.Hex()
	case bson.DateTime:
		return val.Time().UTC().Format(time.RFC3339)
	case bson.Timestamp:
		return time.Unix(int64(val.T), 0).UTC().Format(time.RFC3339)
	case bson.Decimal128:
		return val.String()
	case bson.Binary:
		return fmt.Sprintf("[binary %d bytes]", len(val.Data))
	case bson.Regex:
		return "/" + val.Pattern + "/" + val.Options
	case int32:
		return int64(val)
	case float64:
		return grid.JSONSafe(val)
	case bson.Null, bson.Undefined:
		return nil
	}
	return v
}

// inferFields unions the keys of docs in first-seen order with _id first.
// A key whose values disagree on type is reported as json.
func inferFields(docs []bson.D) []source.FieldDescriptor {
	var (
		order []string
		types = map[string]string{}
	)
	for _, doc := range docs {
		for _, e := range doc {
			t := bsonType(e.Value)
			prev, seen := types[e.Key]
			switch {
			case !seen:
				order = append(order, e.Key)
				types[e.Key] = t
			case prev == "":
				types[e.Key] = t
			case t != "" && t != prev:
				types[e.Key] = "json"
			}
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return order[i] == "_id" && order[j] != "_id"
	})

	fields := make([]source.FieldDescriptor, len(order))
	for i, key := range order {
		fields[i] = source.FieldDescriptor{
			Field:      key,
			Type:       types[key],
			PrimaryKey: key == "_id",
			Nullable:   key != "_id",
		}
	}
	return fields
}

// bsonType names the field type of a BSON value; "" for null.
func bsonType(v any) string {
	switch v.(type) {
	case nil, bson.Null, bson.Undefined:
		return ""
	case string, bson.ObjectID, bson.Symbol:
		return "string"
	case bool:
		return "boolean"
	case int32:
		return "integer"
	case int64:
		return "bigInteger"
	case float64:
		return "float"
	case bson.Decimal128:
		return "decimal"
	case bson.DateTime, bson.Timestamp:
		return "timestamp"
	case bson.D, bson.M, bson.A:
		return "json"
	case bson.Binary:
		return "binary"
	}
	return "string"
}

func sortCollections(cols []source.Collection) {
	sort.Slice(cols, func(i, j int) bool { return cols[i].Name < cols[j].Name })
}
