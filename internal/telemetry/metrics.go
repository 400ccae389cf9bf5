package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "vecrag"

// Metrics holds the prometheus collectors for embedding calls and searches.
type Metrics struct {
	// EmbeddingDuration observes embedding call latency.
	// Labels: provider, operation (embed, batch_embed)
	EmbeddingDuration *prometheus.HistogramVec

	// EmbeddingBatchSize observes the number of texts per batch call.
	// Labels: provider
	EmbeddingBatchSize *prometheus.HistogramVec

	// EmbeddingErrors counts failed embedding calls.
	// Labels: provider, operation
	EmbeddingErrors *prometheus.CounterVec

	// SearchDuration observes retrieval latency including query embedding.
	// Labels: metric
	SearchDuration *prometheus.HistogramVec

	// SearchResults observes how many results a retrieval returned.
	// Labels: metric
	SearchResults *prometheus.HistogramVec

	// Queries counts RAG queries by outcome.
	// Labels: result (answered, empty, error)
	Queries *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		EmbeddingDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "embedding",
				Name:      "duration_seconds",
				Help:      "Duration of embedding calls in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"provider", "operation"},
		),
		EmbeddingBatchSize: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "embedding",
				Name:      "batch_size",
				Help:      "Number of texts per embedding batch call",
				Buckets:   []float64{1, 2, 5, 10, 25, 50, 100, 250, 500, 1000, 2048},
			},
			[]string{"provider"},
		),
		EmbeddingErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "embedding",
				Name:      "errors_total",
				Help:      "Total number of failed embedding calls",
			},
			[]string{"provider", "operation"},
		),
		SearchDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "search",
				Name:      "duration_seconds",
				Help:      "Duration of vector searches in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"metric"},
		),
		SearchResults: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "search",
				Name:      "results",
				Help:      "Number of results returned per search",
				Buckets:   []float64{0, 1, 2, 3, 5, 10, 20, 50},
			},
			[]string{"metric"},
		),
		Queries: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "rag",
				Name:      "queries_total",
				Help:      "Total number of RAG queries by result",
			},
			[]string{"result"},
		),
	}
}

// RecordEmbedding records one embedding call. batchSize is ignored when zero.
func (m *Metrics) RecordEmbedding(provider, operation string, d time.Duration, batchSize int, err error) {
	if m == nil {
		return
	}
	m.EmbeddingDuration.WithLabelValues(provider, operation).Observe(d.Seconds())
	if batchSize > 0 {
		m.EmbeddingBatchSize.WithLabelValues(provider).Observe(float64(batchSize))
	}
	if err != nil {
		m.EmbeddingErrors.WithLabelValues(provider, operation).Inc()
	}
}

// RecordSearch records one retrieval.
func (m *Metrics) RecordSearch(metric string, d time.Duration, results int) {
	if m == nil {
		return
	}
	m.SearchDuration.WithLabelValues(metric).Observe(d.Seconds())
	m.SearchResults.WithLabelValues(metric).Observe(float64(results))
}

// RecordQuery counts a RAG query outcome.
func (m *Metrics) RecordQuery(result string) {
	if m == nil {
		return
	}
	m.Queries.WithLabelValues(result).Inc()
}
