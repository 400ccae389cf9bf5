package distance

import (
	"fmt"
	"sort"
	"strings"
)

// Names of the built-in metrics.
const (
	NameCosine    = "cosine"
	NameDot       = "dot"
	NameEuclidean = "euclidean"
	NameManhattan = "manhattan"
)

// Metric is a named scoring function. The zero value is not usable; obtain
// one from the package variables, Parse, or Custom.
type Metric struct {
	name   string
	fn     Func
	custom bool
}

var (
	MetricCosine    = Metric{name: NameCosine, fn: Cosine}
	MetricDot       = Metric{name: NameDot, fn: Dot}
	MetricEuclidean = Metric{name: NameEuclidean, fn: Euclidean}
	MetricManhattan = Metric{name: NameManhattan, fn: Manhattan}

	// Default is the metric used when a caller does not choose one.
	Default = MetricCosine
)

var registry = map[string]Metric{
	NameCosine:    MetricCosine,
	NameDot:       MetricDot,
	NameEuclidean: MetricEuclidean,
	NameManhattan: MetricManhattan,
}

// Parse looks up a built-in metric by name.
func Parse(name string) (Metric, error) {
	m, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Metric{}, fmt.Errorf("%w %q (available: %s)", ErrUnknownMetric, name, strings.Join(Names(), ", "))
	}
	return m, nil
}

// Names returns the built-in metric names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Builtins returns every built-in metric, ordered by name.
func Builtins() []Metric {
	names := Names()
	metrics := make([]Metric, len(names))
	for i, name := range names {
		metrics[i] = registry[name]
	}
	return metrics
}

// Custom wraps a caller-supplied scoring function. fn must follow the
// higher-is-more-similar convention.
func Custom(name string, fn Func) Metric {
	return Metric{name: name, fn: fn, custom: true}
}

// Name returns the metric identifier.
func (m Metric) Name() string {
	return m.name
}

// IsCustom reports whether m was built with Custom.
func (m Metric) IsCustom() bool {
	return m.custom
}

// Valid reports whether m carries a scoring function.
func (m Metric) Valid() bool {
	return m.fn != nil
}

func (m Metric) String() string {
	if m.name == "" {
		return "invalid"
	}
	return m.name
}

// Score compares a and b, failing fast when their lengths differ.
func (m Metric) Score(a, b []float32) (float64, error) {
	if m.fn == nil {
		return 0, ErrInvalidMetric
	}
	if len(a) != len(b) {
		return 0, &DimensionMismatchError{Expected: len(b), Actual: len(a)}
	}
	return m.fn(a, b), nil
}
