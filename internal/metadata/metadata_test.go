package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueEquality(t *testing.T) {
	tests := []struct {
		name  string
		a, b  Value
		equal bool
	}{
		{"SameString", String("food"), String("food"), true},
		{"DifferentString", String("food"), String("auto"), false},
		{"IntAndFloat", Int(3), Number(3), true},
		{"DifferentNumber", Number(3), Number(3.5), false},
		{"SameBool", Bool(true), Bool(true), true},
		{"DifferentBool", Bool(true), Bool(false), false},
		{"StringVsNumber", String("3"), Int(3), false},
		{"StringVsBool", String("true"), Bool(true), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.equal, Filter{"k": tt.b}.Matches(Metadata{"k": tt.a}))
			assert.Equal(t, tt.equal, Filter{"k": tt.a}.Matches(Metadata{"k": tt.b}))
		})
	}
}

func TestFilterMatches(t *testing.T) {
	record := Metadata{
		"category": String("Food"),
		"topic":    String("breakfast"),
		"page":     Int(4),
	}

	tests := []struct {
		name    string
		filter  Filter
		matches bool
	}{
		{"Nil", nil, true},
		{"Empty", Filter{}, true},
		{"Single", Filter{"category": String("Food")}, true},
		{"Conjunction", Filter{"category": String("Food"), "topic": String("breakfast")}, true},
		{"OneWrong", Filter{"category": String("Food"), "topic": String("dinner")}, false},
		{"Number", Filter{"page": Int(4)}, true},
		{"KindMismatch", Filter{"page": String("4")}, false},
		{"AbsentKey", Filter{"source": String("")}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.matches, tt.filter.Matches(record))
		})
	}
}

func TestFilterAbsentKeyNeverMatches(t *testing.T) {
	f := Filter{"category": String("Food")}
	assert.False(t, f.Matches(nil))
	assert.False(t, f.Matches(Metadata{}))
	assert.True(t, Filter(nil).Matches(nil))
}

func TestFilterSetOrder(t *testing.T) {
	fs := Filter{"b": Int(1), "a": String("x"), "c": Bool(false)}.FilterSet()
	require.Len(t, fs.Filters, 3)
	assert.Equal(t, "a", fs.Filters[0].Key)
	assert.Equal(t, "b", fs.Filters[1].Key)
	assert.Equal(t, "c", fs.Filters[2].Key)
}

func TestFilterWithCategory(t *testing.T) {
	base := Filter{"category": String("Sleep"), "topic": String("naps")}

	merged := base.WithCategory("Exercise")
	assert.Equal(t, String("Exercise"), merged["category"])
	assert.Equal(t, String("naps"), merged["topic"])
	assert.Equal(t, String("Sleep"), base["category"], "base filter must not change")

	assert.Equal(t, base, base.WithCategory(""))

	fromNil := Filter(nil).WithCategory("Stress")
	assert.Equal(t, Filter{"category": String("Stress")}, fromNil)
}

func TestParseFilter(t *testing.T) {
	f, err := ParseFilter([]string{"category=Food", "page=4", "ratio=0.5", "draft=false", "code='42'", " topic = pets "})
	require.NoError(t, err)
	assert.Equal(t, Filter{
		"category": String("Food"),
		"page":     Int(4),
		"ratio":    Number(0.5),
		"draft":    Bool(false),
		"code":     String("42"),
		"topic":    String("pets"),
	}, f)

	assert.True(t, f.With("page", Number(4)).Matches(Metadata{
		"category": String("Food"), "page": Int(4), "ratio": Number(0.5),
		"draft": Bool(false), "code": String("42"), "topic": String("pets"),
	}))

	_, err = ParseFilter([]string{"no-equals"})
	assert.Error(t, err)
	_, err = ParseFilter([]string{"=value"})
	assert.Error(t, err)
}

func TestMetadataClone(t *testing.T) {
	m := Metadata{"category": String("Food")}
	c := m.Clone()
	c["category"] = String("Auto")
	assert.Equal(t, String("Food"), m["category"])

	assert.NotNil(t, Metadata(nil).Clone())
	assert.Empty(t, Metadata(nil).Clone())
}

func TestMetadataCategory(t *testing.T) {
	cat, ok := Metadata{"category": String("Sleep")}.Category()
	assert.True(t, ok)
	assert.Equal(t, "Sleep", cat)

	_, ok = Metadata{"topic": String("x")}.Category()
	assert.False(t, ok)

	_, ok = Metadata{"category": Int(1)}.Category()
	assert.False(t, ok, "only string values are category labels")
}

func TestFormat(t *testing.T) {
	m := Metadata{"category": String("Food"), "page": Int(2), "ratio": Number(0.25), "draft": Bool(true)}
	assert.Equal(t, "{category=Food, draft=true, page=2, ratio=0.25}", m.String())
	assert.Equal(t, "", Format(Value{}))
}
