package vectorstore

import (
	"context"
	"fmt"
	"math"
	"slices"
	"sort"
	"sync"

	vecmeta "github.com/hupe1980/vecgo/metadata"

	"vecrag/internal/distance"
	"vecrag/internal/metadata"
)

// SearchResult is one ranked match
type SearchResult struct {
	Key   string  `json:"key"`
	Score float64 `json:"score"`
}

// MemoryStore implements an in-memory, brute-force vector store.
//
// Vectors and metadata live in two maps kept in lockstep by Insert. Keys are
// also tracked in insertion order, which breaks ties between equal scores.
type MemoryStore struct {
	vectors  map[string][]float32
	metadata map[string]metadata.Metadata
	order    []string
	embedder Embedder
	mutex    sync.RWMutex
}

// Option configures a MemoryStore
type Option func(*MemoryStore)

// WithEmbedder sets the embedding capability used by SearchByText and BuildFromList
func WithEmbedder(e Embedder) Option {
	return func(m *MemoryStore) { m.embedder = e }
}

var _ VectorStore = (*MemoryStore)(nil)

// NewMemoryStore creates a new in-memory vector store
func NewMemoryStore(opts ...Option) *MemoryStore {
	m := &MemoryStore{
		vectors:  make(map[string][]float32),
		metadata: make(map[string]metadata.Metadata),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Insert stores a vector and its metadata, overwriting any previous entry for key.
// A nil md is stored as empty metadata.
func (m *MemoryStore) Insert(key string, vector []float32, md metadata.Metadata) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.insertLocked(key, vector, md)
}

func (m *MemoryStore) insertLocked(key string, vector []float32, md metadata.Metadata) {
	if _, exists := m.vectors[key]; !exists {
		m.order = append(m.order, key)
	}
	m.vectors[key] = slices.Clone(vector)
	m.metadata[key] = md.Clone()
}

// Search scores every record whose metadata satisfies filter and returns the
// top k by descending score. Equal scores keep insertion order and NaN
// scores rank last.
func (m *MemoryStore) Search(query []float32, k int, metric distance.Metric, filter metadata.Filter) ([]SearchResult, error) {
	if k <= 0 {
		return []SearchResult{}, nil
	}
	if !metric.Valid() {
		return nil, distance.ErrInvalidMetric
	}

	m.mutex.RLock()
	defer m.mutex.RUnlock()

	conds := filter.FilterSet()
	results := make([]SearchResult, 0, len(m.order))
	for _, key := range m.order {
		if !conds.Matches(vecmeta.Document(m.metadata[key])) {
			continue
		}
		score, err := metric.Score(query, m.vectors[key])
		if err != nil {
			return nil, fmt.Errorf("failed to score %q with %s: %w", key, metric, err)
		}
		results = append(results, SearchResult{Key: key, Score: score})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return ranksBefore(results[i].Score, results[j].Score)
	})

	if len(results) > k {
		results = results[:k]
	}

	return results, nil
}

// ranksBefore orders scores descending with NaN after every number.
func ranksBefore(a, b float64) bool {
	if math.IsNaN(b) {
		return !math.IsNaN(a)
	}
	return a > b
}

// SearchByText embeds text and searches with the resulting vector. A non-empty
// category is merged into filter under "category", overwriting any category
// constraint filter already carries. Embedding errors are returned as is.
func (m *MemoryStore) SearchByText(ctx context.Context, text string, k int, metric distance.Metric, category string, filter metadata.Filter) ([]SearchResult, error) {
	if m.embedder == nil {
		return nil, ErrNoEmbedder
	}

	query, err := m.embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	return m.Search(query, k, metric, filter.WithCategory(category))
}

// Retrieve returns a copy of the vector stored under key
func (m *MemoryStore) Retrieve(key string) ([]float32, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	vector, exists := m.vectors[key]
	if !exists {
		return nil, false
	}
	return slices.Clone(vector), true
}

// GetMetadata returns a copy of the metadata stored under key. Unknown keys
// yield empty metadata, the same as a known key stored without any.
func (m *MemoryStore) GetMetadata(key string) metadata.Metadata {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return m.metadata[key].Clone()
}

// Count returns the number of records in the store
func (m *MemoryStore) Count() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.vectors)
}

// Keys returns all keys in insertion order
func (m *MemoryStore) Keys() []string {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return slices.Clone(m.order)
}

// ResultKeys extracts the keys of results, preserving rank order.
func ResultKeys(results []SearchResult) []string {
	keys := make([]string, len(results))
	for i, r := range results {
		keys[i] = r.Key
	}
	return keys
}
