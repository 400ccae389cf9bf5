package metadata

import (
	"sort"
	"strings"

	vecmeta "github.com/hupe1980/vecgo/metadata"
)

// CategoryKey is the metadata key used for topic categories.
const CategoryKey = "category"

// Metadata is the attribute map attached to one stored record.
type Metadata vecmeta.Document

// Clone returns an independent copy of m. A nil map clones to an empty one.
func (m Metadata) Clone() Metadata {
	if len(m) == 0 {
		return Metadata{}
	}
	return Metadata(vecmeta.Document(m).Clone())
}

// Get returns the value stored under key.
func (m Metadata) Get(key string) (Value, bool) {
	v, ok := m[key]
	return v, ok
}

// Category returns the category label. Only string values are labels; a
// category stored as a number or bool reports false.
func (m Metadata) Category() (string, bool) {
	return m[CategoryKey].AsString()
}

// Keys returns the keys of m in sorted order.
func (m Metadata) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (m Metadata) String() string {
	parts := make([]string, 0, len(m))
	for _, k := range m.Keys() {
		parts = append(parts, k+"="+Format(m[k]))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
