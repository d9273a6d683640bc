// Package vector provides the similarity primitives shared by the retrieval
// pipeline.
package vector

import (
	"container/heap"
	"math"
	"sort"
)

// CosineSimilarity calculates the cosine similarity between two float32 vectors.
// Returns 0 if vectors have different lengths, are empty, or either has zero
// magnitude. The result is in the range [-1, 1].
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dotProduct, normA, normB float64

	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Magnitude calculates the Euclidean magnitude (L2 norm) of a float32 vector.
func Magnitude(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

// Normalize normalizes a float32 vector to unit length.
// Returns nil if the input is empty or has zero magnitude.
func Normalize(v []float32) []float32 {
	if len(v) == 0 {
		return nil
	}

	mag := Magnitude(v)
	if mag == 0 {
		return nil
	}

	result := make([]float32, len(v))
	for i, x := range v {
		result[i] = float32(float64(x) / mag)
	}
	return result
}

// Scored pairs an index into some external slice with a similarity score.
type Scored struct {
	Index int
	Score float64
}

// less orders a before b for descending-score output: higher score first,
// ties broken by lower index so results are stable w.r.t. original order.
func less(a, b Scored) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return a.Index < b.Index
}

// minHeap keeps the weakest of the current top-k candidates at the root.
type minHeap []Scored

func (h minHeap) Len() int           { return len(h) }
func (h minHeap) Less(i, j int) bool { return less(h[j], h[i]) }
func (h minHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *minHeap) Push(x any) {
	*h = append(*h, x.(Scored))
}

func (h *minHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[0 : n-1]
	return x
}

// TopK returns the k entries with the highest scores, sorted by descending
// score with equal scores kept in ascending index order. The ordering is
// fully deterministic for a given input. If k >= len(scores) every entry is
// returned.
//
// This is O(n log k), cheaper than sorting everything when k << n.
func TopK(scores []float64, k int) []Scored {
	if k <= 0 || len(scores) == 0 {
		return nil
	}

	if k >= len(scores) {
		result := make([]Scored, len(scores))
		for i, s := range scores {
			result[i] = Scored{Index: i, Score: s}
		}
		sort.Slice(result, func(i, j int) bool { return less(result[i], result[j]) })
		return result
	}

	h := make(minHeap, 0, k)
	heap.Init(&h)

	for i, s := range scores {
		item := Scored{Index: i, Score: s}
		if h.Len() < k {
			heap.Push(&h, item)
		} else if less(item, h[0]) {
			heap.Pop(&h)
			heap.Push(&h, item)
		}
	}

	result := make([]Scored, h.Len())
	for i := len(result) - 1; i >= 0; i-- {
		result[i] = heap.Pop(&h).(Scored)
	}
	return result
}
