// Package categorize assigns a topic label to a text chunk by counting
// keyword hits.
package categorize

import (
	"strings"

	"vecrag/internal/metadata"
)

const (
	// General is returned when no rule matches.
	General = "General"
	// Unknown labels records stored without a category.
	Unknown = "Unknown"
)

// Rule maps a category to the keywords that vote for it.
type Rule struct {
	Category string
	Keywords []string
}

// Classifier scores a text against an ordered list of rules.
type Classifier struct {
	rules    []Rule
	fallback string
}

// New creates a Classifier. Rules earlier in the list win ties.
func New(rules []Rule) *Classifier {
	return &Classifier{rules: rules, fallback: General}
}

// Default returns the health and wellness classifier.
func Default() *Classifier {
	return New(HealthRules())
}

// HealthRules returns the built-in Exercise, Nutrition, Sleep and Stress rules.
func HealthRules() []Rule {
	return []Rule{
		{Category: "Exercise", Keywords: []string{
			"exercise", "workout", "training", "physical", "fitness",
			"stretch", "muscle", "cardio", "strength", "movement",
			"yoga", "running", "walking", "gym", "athletic",
		}},
		{Category: "Nutrition", Keywords: []string{
			"nutrition", "food", "diet", "eating", "meal",
			"vitamin", "protein", "carb", "fat", "calorie",
			"vegetable", "fruit", "hydration", "water", "nutrient",
		}},
		{Category: "Sleep", Keywords: []string{
			"sleep", "rest", "insomnia", "bedtime", "dream",
			"nap", "fatigue", "drowsy", "circadian", "rem",
			"mattress", "pillow", "bedroom", "night",
		}},
		{Category: "Stress", Keywords: []string{
			"stress", "anxiety", "meditation", "mindfulness", "relaxation",
			"mental", "worry", "calm", "breathe", "tension",
			"overwhelm", "cope", "pressure", "zen", "peace",
		}},
	}
}

// Classify returns the category whose keywords occur most often as
// substrings of the lower-cased text. Each keyword counts at most once.
func (c *Classifier) Classify(text string) string {
	lower := strings.ToLower(text)

	best, bestScore := c.fallback, 0
	for _, rule := range c.rules {
		score := 0
		for _, kw := range rule.Keywords {
			if strings.Contains(lower, kw) {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = rule.Category, score
		}
	}
	return best
}

// ClassifyAll returns {"category": label} metadata for each text, index aligned.
func (c *Classifier) ClassifyAll(texts []string) []metadata.Metadata {
	out := make([]metadata.Metadata, len(texts))
	for i, text := range texts {
		out[i] = metadata.Metadata{metadata.CategoryKey: metadata.String(c.Classify(text))}
	}
	return out
}
