package metadata

import (
	"fmt"
	"maps"
	"math"
	"sort"
	"strconv"
	"strings"

	vecmeta "github.com/hupe1980/vecgo/metadata"
)

// Filter is a conjunction of key == value constraints. A nil or empty Filter
// matches every record.
type Filter map[string]Value

// FilterSet compiles f into vecgo equality conditions, ordered by key.
func (f Filter) FilterSet() *vecmeta.FilterSet {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	conds := make([]vecmeta.Filter, len(keys))
	for i, k := range keys {
		conds[i] = vecmeta.Filter{Key: k, Operator: vecmeta.OpEqual, Value: f[k]}
	}
	return vecmeta.NewFilterSet(conds...)
}

// Matches reports whether every constraint in f is satisfied by m. A key
// absent from m never satisfies a constraint.
func (f Filter) Matches(m Metadata) bool {
	return f.FilterSet().Matches(vecmeta.Document(m))
}

// With returns a copy of f with key set to v, overwriting any existing
// constraint on key.
func (f Filter) With(key string, v Value) Filter {
	out := make(Filter, len(f)+1)
	maps.Copy(out, f)
	out[key] = v
	return out
}

// WithCategory applies the category shorthand. An empty category leaves f
// unchanged; otherwise it always overwrites a category constraint already in f.
func (f Filter) WithCategory(category string) Filter {
	if category == "" {
		return f
	}
	return f.With(CategoryKey, String(category))
}

// ParseFilter builds a Filter from "key=value" pairs. Values "true" and
// "false" become booleans, values that parse as numbers become numbers, and
// everything else is a string. Quote a value ("key='42'") to force a string.
func ParseFilter(pairs []string) (Filter, error) {
	f := make(Filter, len(pairs))
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid filter %q: expected key=value", pair)
		}
		f[key] = parseScalar(strings.TrimSpace(raw))
	}
	return f, nil
}

func parseScalar(raw string) Value {
	if len(raw) >= 2 && (raw[0] == '\'' || raw[0] == '"') && raw[len(raw)-1] == raw[0] {
		return String(raw[1 : len(raw)-1])
	}
	if raw == "true" || raw == "false" {
		return Bool(raw == "true")
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return vecmeta.Int(n)
	}
	if n, err := strconv.ParseFloat(raw, 64); err == nil && !math.IsNaN(n) {
		return Number(n)
	}
	return String(raw)
}
