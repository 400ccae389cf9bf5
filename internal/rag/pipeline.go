package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"vecrag/internal/distance"
	"vecrag/internal/llm"
	"vecrag/internal/metadata"
	"vecrag/internal/telemetry"
	"vecrag/internal/vectorstore"
)

// NoResultsAnswer is returned when retrieval finds nothing to ground an answer on.
const NoResultsAnswer = "I couldn't find any relevant information in the indexed documents to answer your question."

// ErrNoGenerator is returned by Query when the pipeline has no LLM.
var ErrNoGenerator = errors.New("rag pipeline has no generator")

const defaultPromptTemplate = `You are a helpful assistant that answers questions based on the provided context. Use only the information given in the context to answer the question. If the context doesn't contain enough information to answer the question, say so.

Context:
{{.Context}}

Question: {{.Question}}

Answer:`

// QueryOptions selects how many chunks to retrieve and how to rank them.
type QueryOptions struct {
	K        int
	Metric   distance.Metric
	Category string
	Filter   metadata.Filter
}

// Source is a retrieved chunk with its score and metadata.
type Source struct {
	Key      string            `json:"key"`
	Score    float64           `json:"score"`
	Metadata metadata.Metadata `json:"metadata"`
}

// Pipeline represents the RAG pipeline
type Pipeline struct {
	store          vectorstore.VectorStore
	llm            llm.Generator
	promptTemplate string
	metrics        *telemetry.Metrics
	logger         *zap.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithMetrics records retrieval and query metrics.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// WithLogger sets the pipeline logger.
func WithLogger(l *zap.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// WithPromptTemplate replaces the default prompt. The template may use
// {{.Context}} and {{.Question}}.
func WithPromptTemplate(template string) Option {
	return func(p *Pipeline) {
		if template != "" {
			p.promptTemplate = template
		}
	}
}

// NewPipeline creates a new RAG pipeline. generator may be nil for
// retrieval-only use.
func NewPipeline(store vectorstore.VectorStore, generator llm.Generator, opts ...Option) *Pipeline {
	p := &Pipeline{
		store:          store,
		llm:            generator,
		promptTemplate: defaultPromptTemplate,
		logger:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Retrieve finds the chunks most relevant to question.
func (p *Pipeline) Retrieve(ctx context.Context, question string, opts QueryOptions) ([]Source, error) {
	metric := opts.Metric
	if !metric.Valid() {
		metric = distance.Default
	}
	logger := p.logger.With(
		zap.String("request_id", uuid.NewString()),
		zap.String("metric", metric.Name()),
		zap.Int("k", opts.K),
	)

	start := time.Now()
	results, err := p.store.SearchByText(ctx, question, opts.K, metric, opts.Category, opts.Filter)
	elapsed := time.Since(start)
	if err != nil {
		logger.Debug("retrieval failed", zap.Error(err))
		return nil, fmt.Errorf("failed to search vector store: %w", err)
	}
	p.metrics.RecordSearch(metric.Name(), elapsed, len(results))

	sources := make([]Source, len(results))
	for i, r := range results {
		sources[i] = Source{Key: r.Key, Score: r.Score, Metadata: p.store.GetMetadata(r.Key)}
	}

	logger.Debug("retrieved sources",
		zap.String("category", opts.Category),
		zap.Stringer("filter", metadata.Metadata(opts.Filter)),
		zap.Int("results", len(sources)),
		zap.Duration("elapsed", elapsed),
	)
	return sources, nil
}

// Query performs a RAG query: retrieve relevant chunks and generate an answer
func (p *Pipeline) Query(ctx context.Context, question string, opts QueryOptions) (string, []Source, error) {
	if p.llm == nil {
		return "", nil, ErrNoGenerator
	}

	sources, err := p.Retrieve(ctx, question, opts)
	if err != nil {
		p.metrics.RecordQuery("error")
		return "", nil, err
	}

	if len(sources) == 0 {
		p.metrics.RecordQuery("empty")
		return NoResultsAnswer, sources, nil
	}

	prompt := p.BuildPrompt(question, sources)
	answer, err := p.llm.Generate(ctx, prompt)
	if err != nil {
		p.metrics.RecordQuery("error")
		return "", sources, fmt.Errorf("failed to generate answer: %w", err)
	}

	p.metrics.RecordQuery("answered")
	return strings.TrimSpace(answer), sources, nil
}

// QueryStream performs a RAG query and streams the answer when the
// generator supports it, falling back to a single callback otherwise.
func (p *Pipeline) QueryStream(ctx context.Context, question string, opts QueryOptions, callback func(string)) ([]Source, error) {
	if p.llm == nil {
		return nil, ErrNoGenerator
	}

	sources, err := p.Retrieve(ctx, question, opts)
	if err != nil {
		p.metrics.RecordQuery("error")
		return nil, err
	}

	if len(sources) == 0 {
		p.metrics.RecordQuery("empty")
		callback(NoResultsAnswer)
		return sources, nil
	}

	prompt := p.BuildPrompt(question, sources)
	if streamer, ok := p.llm.(llm.StreamGenerator); ok {
		err = streamer.GenerateStream(ctx, prompt, callback)
	} else {
		var answer string
		answer, err = p.llm.Generate(ctx, prompt)
		if err == nil {
			callback(strings.TrimSpace(answer))
		}
	}
	if err != nil {
		p.metrics.RecordQuery("error")
		return sources, fmt.Errorf("failed to generate streaming answer: %w", err)
	}

	p.metrics.RecordQuery("answered")
	return sources, nil
}

// BuildPrompt fills the prompt template with the question and the retrieved context.
func (p *Pipeline) BuildPrompt(question string, sources []Source) string {
	prompt := p.promptTemplate
	prompt = strings.ReplaceAll(prompt, "{{.Context}}", buildContext(sources))
	prompt = strings.ReplaceAll(prompt, "{{.Question}}", question)
	return prompt
}

// buildContext creates a context string from retrieved sources
func buildContext(sources []Source) string {
	contextParts := make([]string, 0, len(sources))

	for i, source := range sources {
		header := fmt.Sprintf("Document %d (Similarity: %.3f)", i+1, source.Score)
		if category, ok := source.Metadata.Category(); ok {
			header = fmt.Sprintf("Document %d [%s] (Similarity: %.3f)", i+1, category, source.Score)
		}
		contextParts = append(contextParts, header+":\n"+source.Key)
	}

	return strings.Join(contextParts, "\n\n---\n\n")
}

// Stats summarises the pipeline's store and model
type Stats struct {
	Store vectorstore.Stats `json:"store"`
	Model string            `json:"model,omitempty"`
}

// Stats returns statistics about the RAG pipeline
func (p *Pipeline) Stats() Stats {
	stats := Stats{Store: p.store.Stats()}
	if p.llm != nil {
		stats.Model = p.llm.Model()
	}
	return stats
}
