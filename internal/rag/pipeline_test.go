package rag

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"vecrag/internal/categorize"
	"vecrag/internal/distance"
	"vecrag/internal/embedding"
	"vecrag/internal/metadata"
	"vecrag/internal/telemetry"
	"vecrag/internal/vectorstore"
)

type fakeGenerator struct {
	prompts []string
	err     error
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return "  grounded answer \n", nil
}

func (f *fakeGenerator) Model() string { return "fake-model" }

type streamingGenerator struct{ fakeGenerator }

func (s *streamingGenerator) GenerateStream(_ context.Context, prompt string, cb func(string)) error {
	s.prompts = append(s.prompts, prompt)
	cb("streamed ")
	cb("answer")
	return nil
}

var corpus = []string{
	"Stretching and yoga exercise loosen tight muscle groups.",
	"A protein rich meal with fruit and vegetable sides.",
	"A consistent bedtime helps with insomnia and night waking.",
	"Meditation and mindfulness calm stress and anxiety.",
	"Running and strength training improve fitness.",
}

func newTestStore(t *testing.T) *vectorstore.MemoryStore {
	t.Helper()
	store := vectorstore.NewMemoryStore(vectorstore.WithEmbedder(embedding.NewHash()))
	metas := categorize.Default().ClassifyAll(corpus)
	require.NoError(t, store.BuildFromList(context.Background(), corpus, metas))
	return store
}

func TestQuery(t *testing.T) {
	store := newTestStore(t)
	gen := &fakeGenerator{}
	reg := prometheus.NewRegistry()
	metrics := telemetry.NewMetrics(reg)
	core, logs := observer.New(zap.DebugLevel)

	p := NewPipeline(store, gen, WithMetrics(metrics), WithLogger(zap.New(core)))

	answer, sources, err := p.Query(context.Background(), "which exercise helps tight muscle", QueryOptions{
		K:        2,
		Category: "Exercise",
	})
	require.NoError(t, err)
	assert.Equal(t, "grounded answer", answer)
	require.Len(t, sources, 2)
	for _, s := range sources {
		assert.Equal(t, metadata.String("Exercise"), s.Metadata[metadata.CategoryKey])
	}
	assert.Equal(t, corpus[0], sources[0].Key)

	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "Question: which exercise helps tight muscle")
	assert.Contains(t, gen.prompts[0], "Document 1 [Exercise]")
	assert.Contains(t, gen.prompts[0], corpus[0])

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Queries.WithLabelValues("answered")))
	entries := logs.FilterMessage("retrieved sources").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "cosine", entries[0].ContextMap()["metric"])
	assert.NotEmpty(t, entries[0].ContextMap()["request_id"])
}

func TestQueryNoResults(t *testing.T) {
	store := newTestStore(t)
	gen := &fakeGenerator{}
	p := NewPipeline(store, gen)

	answer, sources, err := p.Query(context.Background(), "anything", QueryOptions{K: 3, Category: "Astronomy"})
	require.NoError(t, err)
	assert.Equal(t, NoResultsAnswer, answer)
	assert.Empty(t, sources)
	assert.Empty(t, gen.prompts)
}

func TestQueryErrors(t *testing.T) {
	store := newTestStore(t)

	_, _, err := NewPipeline(store, nil).Query(context.Background(), "q", QueryOptions{K: 1})
	assert.ErrorIs(t, err, ErrNoGenerator)

	boom := errors.New("llm offline")
	_, sources, err := NewPipeline(store, &fakeGenerator{err: boom}).Query(context.Background(), "sleep", QueryOptions{K: 1})
	assert.ErrorIs(t, err, boom)
	assert.Len(t, sources, 1)

	bad := vectorstore.NewMemoryStore(vectorstore.WithEmbedder(embedding.NewHash(embedding.WithDimension(8))))
	bad.Insert("short", []float32{1, 2}, nil)
	_, _, err = NewPipeline(bad, &fakeGenerator{}).Query(context.Background(), "q", QueryOptions{K: 1})
	assert.ErrorIs(t, err, distance.ErrDimensionMismatch)
}

func TestRetrieveMetricsAndFilter(t *testing.T) {
	store := newTestStore(t)
	p := NewPipeline(store, nil)

	for _, m := range distance.Builtins() {
		sources, err := p.Retrieve(context.Background(), "insomnia at night", QueryOptions{K: 10, Metric: m})
		require.NoError(t, err, m.Name())
		assert.Len(t, sources, len(corpus))
	}

	sources, err := p.Retrieve(context.Background(), "insomnia at night", QueryOptions{
		K:      10,
		Filter: metadata.Filter{metadata.CategoryKey: metadata.String("Sleep")},
	})
	require.NoError(t, err)
	require.Len(t, sources, 1)
	assert.Equal(t, corpus[2], sources[0].Key)
}

func TestQueryStream(t *testing.T) {
	store := newTestStore(t)

	var streamed strings.Builder
	sources, err := NewPipeline(store, &streamingGenerator{}).QueryStream(context.Background(), "stress", QueryOptions{K: 1},
		func(s string) { streamed.WriteString(s) })
	require.NoError(t, err)
	assert.Len(t, sources, 1)
	assert.Equal(t, "streamed answer", streamed.String())

	var plain []string
	_, err = NewPipeline(store, &fakeGenerator{}).QueryStream(context.Background(), "stress", QueryOptions{K: 1},
		func(s string) { plain = append(plain, s) })
	require.NoError(t, err)
	assert.Equal(t, []string{"grounded answer"}, plain)
}

func TestPromptTemplateAndStats(t *testing.T) {
	store := newTestStore(t)
	p := NewPipeline(store, &fakeGenerator{}, WithPromptTemplate("Q={{.Question}} C={{.Context}}"))

	prompt := p.BuildPrompt("why", []Source{{Key: "text", Score: 0.5}})
	assert.Equal(t, "Q=why C=Document 1 (Similarity: 0.500):\ntext", prompt)

	stats := p.Stats()
	assert.Equal(t, "fake-model", stats.Model)
	assert.Equal(t, len(corpus), stats.Store.TotalCount)
	assert.Equal(t, []string{"Exercise", "Nutrition", "Sleep", "Stress"}, stats.Store.Categories)
}
