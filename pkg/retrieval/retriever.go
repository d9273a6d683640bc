// Package retrieval implements nearest-neighbor search over the pre-computed
// domain embedding matrix.
package retrieval

import (
	"github.com/stancelab/stancesweep/pkg/vector"
)

// Match is one retrieved corpus position with its similarity to the query.
type Match struct {
	// Index is the position of the matched document in the corpus.
	Index int
	// Score is the cosine similarity between query and document, in [-1, 1].
	Score float64
}

// Retriever performs cosine top-k search against a corpus embedding matrix.
// The matrix is shared read-only state: it is computed once by the encoder
// and borrowed by every call across the whole sweep. A Retriever never
// mutates it.
type Retriever struct {
	matrix [][]float32
}

// New creates a Retriever over the given embedding matrix. The matrix is
// indexed positionally: row i is the embedding of corpus document i.
func New(matrix [][]float32) *Retriever {
	return &Retriever{matrix: matrix}
}

// Size returns the number of corpus rows available for retrieval.
func (r *Retriever) Size() int {
	return len(r.matrix)
}

// TopK returns the k corpus rows most similar to the query embedding,
// ordered by descending score. Equal scores keep ascending corpus order, so
// repeated calls on identical input yield identical results. A k larger than
// the corpus is clamped to the corpus size; callers that care about the clamp
// should compare len(result) against k.
func (r *Retriever) TopK(query []float32, k int) []Match {
	if k > len(r.matrix) {
		k = len(r.matrix)
	}
	if k <= 0 {
		return nil
	}

	scores := make([]float64, len(r.matrix))
	for i, row := range r.matrix {
		scores[i] = vector.CosineSimilarity(query, row)
	}

	top := vector.TopK(scores, k)
	matches := make([]Match, len(top))
	for i, s := range top {
		matches[i] = Match{Index: s.Index, Score: s.Score}
	}
	return matches
}
