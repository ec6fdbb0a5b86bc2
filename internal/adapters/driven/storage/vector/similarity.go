package vector

import (
	"fmt"
	"math"
	"sort"

	"github.com/custodia-labs/ragent/internal/core/domain"
)

// Cosine computes the cosine similarity between two vectors.
// A zero-magnitude vector has similarity 0 with everything.
func Cosine(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", domain.ErrDimensionMismatch, len(a), len(b))
	}
	var dot, na2, nb2 float64
	for i := range a {
		va := float64(a[i])
		vb := float64(b[i])
		dot += va * vb
		na2 += va * va
		nb2 += vb * vb
	}
	if na2 == 0 || nb2 == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(na2) * math.Sqrt(nb2)), nil
}

// Candidate is a stored chunk with its embedding, in insertion order.
type Candidate struct {
	Chunk     domain.Chunk
	Embedding []float32
}

// TopK scores candidates against query and returns up to k best.
// Candidates must be given in insertion order; equal scores keep that order.
func TopK(query []float32, candidates []Candidate, k int) ([]domain.ScoredChunk, error) {
	if k <= 0 || len(candidates) == 0 {
		return []domain.ScoredChunk{}, nil
	}

	scored := make([]domain.ScoredChunk, 0, len(candidates))
	for i := range candidates {
		sim, err := Cosine(query, candidates[i].Embedding)
		if err != nil {
			return nil, err
		}
		scored = append(scored, domain.ScoredChunk{
			Chunk:      candidates[i].Chunk,
			Similarity: sim,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Similarity > scored[j].Similarity
	})

	if len(scored) > k {
		scored = scored[:k]
	}
	return scored, nil
}
