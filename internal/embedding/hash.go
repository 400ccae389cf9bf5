package embedding

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"
)

const hashDefaultDim = 256

// Hash implements [Embedder] with signed feature hashing over lower-cased
// word tokens. Vectors are L2 normalised, so texts sharing words score high
// under cosine. It needs no network and is deterministic.
type Hash struct {
	dim int
}

var _ Embedder = (*Hash)(nil)

// NewHash creates a hashing embedder. WithDimension sets the vector length.
func NewHash(opts ...Option) *Hash {
	cfg := config{dim: hashDefaultDim}
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.dim <= 0 {
		cfg.dim = hashDefaultDim
	}
	return &Hash{dim: cfg.dim}
}

// Embed hashes text into a vector. Text without tokens yields the zero vector.
func (h *Hash) Embed(_ context.Context, text string) ([]float32, error) {
	return h.vector(text), nil
}

// EmbedBatch hashes each text.
func (h *Hash) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = h.vector(text)
	}
	return out, nil
}

func (h *Hash) vector(text string) []float32 {
	acc := make([]float64, h.dim)
	tokens := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, tok := range tokens {
		f := fnv.New64a()
		f.Write([]byte(tok))
		sum := f.Sum64()
		idx := int(sum % uint64(h.dim))
		if sum>>63 == 1 {
			acc[idx]--
		} else {
			acc[idx]++
		}
	}

	var norm float64
	for _, v := range acc {
		norm += v * v
	}
	out := make([]float32, h.dim)
	if norm == 0 {
		return out
	}
	norm = math.Sqrt(norm)
	for i, v := range acc {
		out[i] = float32(v / norm)
	}
	return out
}
