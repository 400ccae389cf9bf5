package embedding

import (
	"context"
	"fmt"
	"net/http"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"golang.org/x/sync/errgroup"
)

const (
	openAIMaxBatch     = 2048
	openAIConcurrency  = 4
	openAIDefaultModel = "text-embedding-3-small"
)

// OpenAI implements [Embedder] using the OpenAI embeddings API.
//
// Batches larger than the per-request limit are split and sent concurrently;
// the first failing sub-batch cancels the rest and fails the whole call.
type OpenAI struct {
	client *openai.Client
	cfg    config
}

var _ Embedder = (*OpenAI)(nil)

// NewOpenAI creates an OpenAI embedder.
func NewOpenAI(apiKey string, opts ...Option) *OpenAI {
	cfg := config{
		model:       openAIDefaultModel,
		httpClient:  http.DefaultClient,
		batchSize:   openAIMaxBatch,
		concurrency: openAIConcurrency,
	}
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.batchSize <= 0 || cfg.batchSize > openAIMaxBatch {
		cfg.batchSize = openAIMaxBatch
	}
	if cfg.concurrency <= 0 {
		cfg.concurrency = 1
	}

	clientOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(cfg.httpClient),
		option.WithMaxRetries(0),
	}
	if cfg.baseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(cfg.baseURL))
	}
	client := openai.NewClient(clientOpts...)

	return &OpenAI{
		client: &client,
		cfg:    cfg,
	}
}

// Embed returns the embedding for a single text.
func (o *OpenAI) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, ErrEmptyInput
	}
	vecs, err := o.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch returns embeddings for multiple texts.
func (o *OpenAI) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, ErrEmptyInput
	}

	result := make([][]float32, len(texts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.cfg.concurrency)

	for i := 0; i < len(texts); i += o.cfg.batchSize {
		start, end := i, min(i+o.cfg.batchSize, len(texts))
		g.Go(func() error {
			vecs, err := o.callAPI(gctx, texts[start:end])
			if err != nil {
				return fmt.Errorf("embed batch [%d:%d]: %w", start, end, err)
			}
			copy(result[start:end], vecs)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

// Model returns the OpenAI model identifier.
func (o *OpenAI) Model() string {
	return o.cfg.model
}

func (o *OpenAI) callAPI(ctx context.Context, texts []string) ([][]float32, error) {
	if o.cfg.limiter != nil {
		if err := o.cfg.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	params := openai.EmbeddingNewParams{
		Model:          o.cfg.model,
		Input:          openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
		EncodingFormat: openai.EmbeddingNewParamsEncodingFormatFloat,
	}
	if o.cfg.dim > 0 {
		params.Dimensions = openai.Int(int64(o.cfg.dim))
	}

	resp, err := o.client.Embeddings.New(ctx, params)
	if err != nil {
		return nil, err
	}

	vecs := make([][]float32, len(texts))
	for _, item := range resp.Data {
		idx := item.Index
		if idx < 0 || idx >= int64(len(texts)) {
			return nil, fmt.Errorf("unexpected embedding index %d for batch size %d", idx, len(texts))
		}
		vecs[idx] = float64sToFloat32s(item.Embedding)
	}

	for i, v := range vecs {
		if v == nil {
			return nil, fmt.Errorf("missing embedding for index %d", i)
		}
	}
	return vecs, nil
}
