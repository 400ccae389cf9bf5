// Package llm generates answers from prompts for the RAG pipeline.
package llm

import "context"

// Generator produces a completion for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Model() string
}

// StreamGenerator can deliver a completion incrementally.
type StreamGenerator interface {
	Generator
	GenerateStream(ctx context.Context, prompt string, callback func(string)) error
}

var _ StreamGenerator = (*OllamaClient)(nil)
