// Package embedding provides text embedding adapters.
//
// An Embedder turns text into a fixed-length float32 vector. Four adapters
// are provided:
//
//   - [OpenAI]: the OpenAI embeddings API (or any compatible endpoint)
//   - [Ollama]: a local Ollama server's /api/embed endpoint
//   - [Command]: a long-running subprocess speaking JSON lines
//   - [Hash]: an offline feature-hashing embedder
//
// EmbedBatch is atomic for every adapter: it returns one vector per input, in
// input order, or an error and no vectors.
package embedding

import (
	"context"
	"errors"
)

// Embedder converts text into dense float32 vectors.
type Embedder interface {
	// Embed returns the embedding vector for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns one embedding per text, in the same order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

var (
	// ErrEmptyInput is returned when there is nothing to embed.
	ErrEmptyInput = errors.New("embedding: empty input")

	// ErrUnknownProvider is returned by New for an unrecognised provider name.
	ErrUnknownProvider = errors.New("embedding: unknown provider")
)

func float64sToFloat32s(in []float64) []float32 {
	out := make([]float32, len(in))
	for i, v := range in {
		out[i] = float32(v)
	}
	return out
}
