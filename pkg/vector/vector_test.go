package vector

import (
	"math"
	"testing"
)

func TestCosineSimilarity(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		a        []float32
		b        []float32
		expected float64
	}{
		{
			name:     "identical vectors",
			a:        []float32{1, 0, 0},
			b:        []float32{1, 0, 0},
			expected: 1.0,
		},
		{
			name:     "opposite vectors",
			a:        []float32{1, 0, 0},
			b:        []float32{-1, 0, 0},
			expected: -1.0,
		},
		{
			name:     "orthogonal vectors",
			a:        []float32{1, 0, 0},
			b:        []float32{0, 1, 0},
			expected: 0.0,
		},
		{
			name:     "parallel non-unit vectors",
			a:        []float32{1, 2, 3},
			b:        []float32{2, 4, 6},
			expected: 1.0,
		},
		{
			name:     "different lengths",
			a:        []float32{1, 2, 3},
			b:        []float32{1, 2},
			expected: 0.0,
		},
		{
			name:     "zero vector",
			a:        []float32{0, 0, 0},
			b:        []float32{1, 2, 3},
			expected: 0.0,
		},
		{
			name:     "nil vectors",
			a:        nil,
			b:        nil,
			expected: 0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CosineSimilarity(tt.a, tt.b)
			if math.Abs(result-tt.expected) > 1e-6 {
				t.Errorf("CosineSimilarity(%v, %v) = %v, expected %v", tt.a, tt.b, result, tt.expected)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	t.Parallel()
	t.Run("normalize non-unit vector", func(t *testing.T) {
		result := Normalize([]float32{3, 4})
		if result == nil {
			t.Fatal("expected non-nil result")
		}
		if math.Abs(float64(result[0])-0.6) > 1e-6 || math.Abs(float64(result[1])-0.8) > 1e-6 {
			t.Errorf("expected [0.6, 0.8], got %v", result)
		}
		if mag := Magnitude(result); math.Abs(mag-1.0) > 1e-6 {
			t.Errorf("expected magnitude 1.0, got %v", mag)
		}
	})

	t.Run("normalize zero vector", func(t *testing.T) {
		if result := Normalize([]float32{0, 0, 0}); result != nil {
			t.Errorf("expected nil for zero vector, got %v", result)
		}
	})

	t.Run("normalize empty vector", func(t *testing.T) {
		if result := Normalize(nil); result != nil {
			t.Errorf("expected nil for empty vector, got %v", result)
		}
	})
}

func TestTopK(t *testing.T) {
	t.Parallel()
	t.Run("basic top k", func(t *testing.T) {
		scores := []float64{0.5, 0.9, 0.3, 0.7, 0.1}

		result := TopK(scores, 3)
		if len(result) != 3 {
			t.Fatalf("expected 3 entries, got %d", len(result))
		}
		want := []Scored{{1, 0.9}, {3, 0.7}, {0, 0.5}}
		for i, w := range want {
			if result[i] != w {
				t.Errorf("result[%d] = %v, expected %v", i, result[i], w)
			}
		}
	})

	t.Run("k greater than length returns everything", func(t *testing.T) {
		result := TopK([]float64{0.5, 0.9}, 10)
		if len(result) != 2 {
			t.Fatalf("expected 2 entries, got %d", len(result))
		}
		if result[0].Index != 1 || result[1].Index != 0 {
			t.Errorf("unexpected order: %v", result)
		}
	})

	t.Run("ties keep original order", func(t *testing.T) {
		scores := []float64{0.5, 0.5, 0.9, 0.5, 0.5}

		result := TopK(scores, 3)
		if len(result) != 3 {
			t.Fatalf("expected 3 entries, got %d", len(result))
		}
		if result[0].Index != 2 {
			t.Errorf("expected index 2 first, got %d", result[0].Index)
		}
		// Among the 0.5 ties the lowest indices win, in ascending order.
		if result[1].Index != 0 || result[2].Index != 1 {
			t.Errorf("expected tie order [0 1], got [%d %d]", result[1].Index, result[2].Index)
		}
	})

	t.Run("deterministic across runs", func(t *testing.T) {
		scores := []float64{0.2, 0.8, 0.8, 0.2, 0.8, 0.5}
		first := TopK(scores, 4)
		for i := 0; i < 10; i++ {
			again := TopK(scores, 4)
			for j := range first {
				if first[j] != again[j] {
					t.Fatalf("run %d diverged at %d: %v vs %v", i, j, first[j], again[j])
				}
			}
		}
	})

	t.Run("k is zero", func(t *testing.T) {
		if result := TopK([]float64{0.5}, 0); result != nil {
			t.Errorf("expected nil for k=0, got %v", result)
		}
	})

	t.Run("empty scores", func(t *testing.T) {
		if result := TopK(nil, 5); result != nil {
			t.Errorf("expected nil for empty scores, got %v", result)
		}
	})
}

func BenchmarkTopK(b *testing.B) {
	scores := make([]float64, 10000)
	for i := range scores {
		scores[i] = float64(i%1000) / 1000.0
	}

	b.Run("k=10", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			TopK(scores, 10)
		}
	})

	b.Run("k=100", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			TopK(scores, 100)
		}
	})
}
