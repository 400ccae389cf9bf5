package vectorstore

import (
	"context"

	"vecrag/internal/distance"
	"vecrag/internal/metadata"
)

// VectorStore defines the interface for vector storage and retrieval
type VectorStore interface {
	// Insert stores a vector under key, replacing any previous vector and metadata
	Insert(key string, vector []float32, md metadata.Metadata)

	// Search ranks the records passing filter against the query vector
	Search(query []float32, k int, metric distance.Metric, filter metadata.Filter) ([]SearchResult, error)

	// SearchByText embeds the query text and searches with it
	SearchByText(ctx context.Context, text string, k int, metric distance.Metric, category string, filter metadata.Filter) ([]SearchResult, error)

	// Retrieve returns the vector stored under key
	Retrieve(key string) ([]float32, bool)

	// GetMetadata returns the metadata stored under key, empty if unknown
	GetMetadata(key string) metadata.Metadata

	// Count returns the number of records in the store
	Count() int

	// Keys returns all keys in insertion order
	Keys() []string

	// Stats returns aggregate counts derived from stored metadata
	Stats() Stats
}

// Embedder is the embedding capability the store consumes. Implementations
// live in the embedding package.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}
