package rank

import (
	"fmt"
	"math"
	"slices"

	"github.com/poiesic/webrag/core"
)

// Similarity computes the cosine similarity between two vectors:
// dot(a,b) / (||a|| * ||b||), conceptually in [-1, 1].
//
// Both vectors must originate from the same embedder; mismatched
// dimensionality is an internal invariant violation and panics.
// If either vector has zero magnitude the similarity is 0.0 — no
// measurable similarity rather than an error.
func Similarity(a, b []float32) float64 {
	if len(a) != len(b) {
		panic(fmt.Sprintf("rank: vector dimensionality mismatch: %d != %d", len(a), len(b)))
	}

	var dot, magA, magB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		magA += float64(a[i]) * float64(a[i])
		magB += float64(b[i]) * float64(b[i])
	}

	if magA == 0 || magB == 0 {
		return 0.0
	}

	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}

// Rank returns a new slice of candidates ordered by score descending.
// The sort is stable: equal-score candidates keep their input order, so
// re-ranking an already-sorted set is a no-op. The input is not modified.
//
// Sentinel-scored candidates (score 0.0, never measured) are not dropped;
// they simply sort last.
func Rank(candidates []core.ScoredCandidate) []core.ScoredCandidate {
	ranked := slices.Clone(candidates)
	slices.SortStableFunc(ranked, func(a, b core.ScoredCandidate) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return 0
	})
	return ranked
}

// SelectTopK returns the first min(k, len(ranked)) entries of a ranked set
// as a new slice. k <= 0 yields an empty result rather than an error.
func SelectTopK(ranked []core.ScoredCandidate, k int) []core.ScoredCandidate {
	if k <= 0 {
		return []core.ScoredCandidate{}
	}
	if k > len(ranked) {
		k = len(ranked)
	}
	return slices.Clone(ranked[:k])
}
