package vectorstore

import "errors"

var (
	// ErrNoEmbedder is returned by text operations on a store built without an embedder.
	ErrNoEmbedder = errors.New("vector store has no embedder")

	// ErrEmbeddingCount is returned when an embedder answers a batch with the wrong number of vectors.
	ErrEmbeddingCount = errors.New("embedding count does not match input count")
)
