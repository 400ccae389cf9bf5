package vectorstore

import (
	"sort"
)

// Stats is an aggregate view of the store derived from its metadata
type Stats struct {
	TotalCount     int            `json:"total_count"`
	Categories     []string       `json:"categories"`
	CategoryCounts map[string]int `json:"category_counts"`
	Uncategorized  int            `json:"uncategorized"`
	Dimension      int            `json:"dimension"`
}

// Stats returns the record count, the sorted distinct category values and the
// number of records per category.
func (m *MemoryStore) Stats() Stats {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	stats := Stats{
		TotalCount:     len(m.vectors),
		Categories:     []string{},
		CategoryCounts: make(map[string]int),
	}

	for _, key := range m.order {
		category, ok := m.metadata[key].Category()
		if !ok {
			stats.Uncategorized++
			continue
		}
		if _, seen := stats.CategoryCounts[category]; !seen {
			stats.Categories = append(stats.Categories, category)
		}
		stats.CategoryCounts[category]++
	}
	sort.Strings(stats.Categories)

	if len(m.order) > 0 {
		stats.Dimension = len(m.vectors[m.order[0]])
	}

	return stats
}

// Categories returns the sorted distinct values stored under the category key
func (m *MemoryStore) Categories() []string {
	return m.Stats().Categories
}
