// Package distance provides the similarity metrics used to rank stored vectors.
//
// Every metric follows the same convention: a larger score means the two
// vectors are more similar. Distance-style metrics (Euclidean, Manhattan) are
// negated so that ranking by descending score works uniformly.
//
// Dot, Cosine and Euclidean run on the SIMD kernels of vecgo's distance
// package, which leaves length checking to the caller (see Metric.Score).
package distance

import (
	"math"

	vecdist "github.com/hupe1980/vecgo/distance"
)

// Func scores two vectors of equal length. Higher is more similar.
type Func func(a, b []float32) float64

// Cosine returns dot(a,b) / (|a|*|b|), or 0 when either vector has zero norm.
func Cosine(a, b []float32) float64 {
	normA := float64(vecdist.Dot(a, a))
	normB := float64(vecdist.Dot(b, b))
	if normA == 0 || normB == 0 {
		return 0
	}

	return float64(vecdist.Dot(a, b)) / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Dot returns the inner product of a and b.
func Dot(a, b []float32) float64 {
	return float64(vecdist.Dot(a, b))
}

// Euclidean returns the negated L2 distance between a and b.
func Euclidean(a, b []float32) float64 {
	return -math.Sqrt(float64(vecdist.SquaredL2(a, b)))
}

// Manhattan returns the negated L1 distance between a and b. vecgo ships no
// L1 kernel, so this one is a plain loop.
func Manhattan(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += math.Abs(float64(a[i]) - float64(b[i]))
	}
	return -sum
}
