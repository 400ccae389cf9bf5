package embedding

import (
	"context"
	"time"

	"go.uber.org/zap"

	"vecrag/internal/telemetry"
)

// Instrumented wraps an Embedder with prometheus metrics and debug logging.
// Errors pass through unchanged.
type Instrumented struct {
	next     Embedder
	provider string
	metrics  *telemetry.Metrics
	logger   *zap.Logger
}

var _ Embedder = (*Instrumented)(nil)

// Instrument decorates next. metrics and logger may be nil.
func Instrument(next Embedder, provider string, metrics *telemetry.Metrics, logger *zap.Logger) *Instrumented {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Instrumented{
		next:     next,
		provider: provider,
		metrics:  metrics,
		logger:   logger.With(zap.String("provider", provider)),
	}
}

// Embed records and forwards a single embedding call.
func (i *Instrumented) Embed(ctx context.Context, text string) ([]float32, error) {
	start := time.Now()
	vec, err := i.next.Embed(ctx, text)
	elapsed := time.Since(start)

	i.metrics.RecordEmbedding(i.provider, "embed", elapsed, 0, err)
	if err != nil {
		i.logger.Warn("embedding failed", zap.Duration("elapsed", elapsed), zap.Error(err))
		return nil, err
	}
	i.logger.Debug("embedded text", zap.Int("dimension", len(vec)), zap.Duration("elapsed", elapsed))
	return vec, nil
}

// EmbedBatch records and forwards a batch embedding call.
func (i *Instrumented) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	start := time.Now()
	vecs, err := i.next.EmbedBatch(ctx, texts)
	elapsed := time.Since(start)

	i.metrics.RecordEmbedding(i.provider, "batch_embed", elapsed, len(texts), err)
	if err != nil {
		i.logger.Warn("batch embedding failed", zap.Int("texts", len(texts)), zap.Duration("elapsed", elapsed), zap.Error(err))
		return nil, err
	}
	i.logger.Debug("embedded batch", zap.Int("texts", len(texts)), zap.Duration("elapsed", elapsed))
	return vecs, nil
}
