package grid

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// ErrUnserializable is returned when a value has no structural text form,
// for example a channel or a NaN nested inside an object.
var ErrUnserializable = errors.New("grid: value cannot be serialized")

// ListSeparator joins list elements when a list is shown as one string.
const ListSeparator = ", "

// Stringify converts a value to the text used for matching and display.
//
// nil becomes "", strings pass through, booleans and numbers use their
// plain form, lists join their elements with ListSeparator and anything
// else is encoded as JSON.
func Stringify(v any) (string, error) {
	switch t := v.(type) {
	case nil:
		return "", nil
	case string:
		return t, nil
	case bool:
		return strconv.FormatBool(t), nil
	case int:
		return strconv.Itoa(t), nil
	case int8, int16, int32, int64:
		return strconv.FormatInt(reflect.ValueOf(t).Int(), 10), nil
	case uint, uint8, uint16, uint32, uint64:
		return strconv.FormatUint(reflect.ValueOf(t).Uint(), 10), nil
	case float32:
		return formatFloat(float64(t), 32), nil
	case float64:
		return formatFloat(t, 64), nil
	case json.Number:
		return t.String(), nil
	case []byte:
		return string(t), nil
	case time.Time:
		return t.Format(time.RFC3339), nil
	case Row:
		return encodeJSON(t)
	case fmt.Stringer:
		return t.String(), nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return joinList(rv)
	case reflect.Pointer:
		if rv.IsNil() {
			return "", nil
		}
		return Stringify(rv.Elem().Interface())
	}
	return encodeJSON(v)
}

// SortKey converts a value to the string the sort stage compares. Strings
// are used as is, nil and unserializable values become "", everything
// else is encoded as JSON.
func SortKey(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	}
	s, err := encodeJSON(v)
	if err != nil {
		return ""
	}
	return s
}

func joinList(rv reflect.Value) (string, error) {
	parts := make([]string, 0, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		s, err := Stringify(rv.Index(i).Interface())
		if err != nil {
			return "", err
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, ListSeparator), nil
}

func formatFloat(f float64, bitSize int) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	abs := math.Abs(f)
	if abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		return strconv.FormatFloat(f, 'g', -1, bitSize)
	}
	return strconv.FormatFloat(f, 'f', -1, bitSize)
}

// encodeJSON encodes v without HTML escaping and without the trailing
// newline json.Encoder adds.
func encodeJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnserializable, err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// encodeJSONIndent is encodeJSON with two-space indentation.
func encodeJSONIndent(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnserializable, err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
