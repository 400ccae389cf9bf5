// Package metadata holds the typed key/value attributes attached to stored
// vectors and the conjunctive equality filter evaluated over them.
//
// Values and filter evaluation come from vecgo's metadata package. Numbers
// compare by value across kinds (Int(3) equals Number(3)); a number never
// equals a string or a bool.
package metadata

import (
	"strconv"
	"strings"

	vecmeta "github.com/hupe1980/vecgo/metadata"
)

// Value is a typed metadata scalar.
type Value = vecmeta.Value

// String returns a string Value.
func String(s string) Value { return vecmeta.String(s) }

// Number returns a floating point Value.
func Number(n float64) Value { return vecmeta.Float(n) }

// Int returns an integer Value.
func Int(n int) Value { return vecmeta.Int(int64(n)) }

// Bool returns a boolean Value.
func Bool(b bool) Value { return vecmeta.Bool(b) }

// Format renders v for display. Strings are returned verbatim.
func Format(v Value) string {
	switch v.Kind {
	case vecmeta.KindString:
		return v.StringValue()
	case vecmeta.KindInt:
		return strconv.FormatInt(v.I64, 10)
	case vecmeta.KindFloat:
		return strconv.FormatFloat(v.F64, 'g', -1, 64)
	case vecmeta.KindBool:
		return strconv.FormatBool(v.B)
	case vecmeta.KindNull:
		return "null"
	case vecmeta.KindArray:
		parts := make([]string, len(v.A))
		for i, item := range v.A {
			parts[i] = Format(item)
		}
		return "[" + strings.Join(parts, " ") + "]"
	default:
		return ""
	}
}
