// Package vector provides cosine similarity ranking over the corpus
// embedding matrix, and binary persistence for the matrix itself.
package vector

import (
	"errors"
	"fmt"
	"sort"

	"github.com/hyperjump/kaiwa/internal/models"
)

// ErrEmptyCorpus indicates ranking was attempted against a matrix with no
// rows; cosine similarity is undefined for an empty corpus.
var ErrEmptyCorpus = errors.New("empty corpus")

// Rank scores every matrix row against query by cosine similarity and
// returns the top k entries in descending score order. Exact ties rank the
// lower original index first so results are reproducible. k is capped at the
// number of rows. The matrix is never mutated; Rank is safe to call
// concurrently for different queries against the same matrix.
func Rank(query []float32, matrix [][]float32, k int) ([]models.RankedEntry, error) {
	if len(matrix) == 0 {
		return nil, ErrEmptyCorpus
	}
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive, got %d", k)
	}
	ranked := make([]models.RankedEntry, len(matrix))
	for i, row := range matrix {
		ranked[i] = models.RankedEntry{Index: i, Score: CosineSimilarity(query, row)}
	}
	// Stable keeps ascending-index order for equal scores.
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score > ranked[j].Score })
	if k > len(ranked) {
		k = len(ranked)
	}
	return ranked[:k], nil
}
