package embedder

import (
	"context"
	"hash/fnv"
	"regexp"
	"strings"

	"github.com/stancelab/stancesweep/pkg/vector"
)

// DefaultBOWDimensions is the vector width used when none is configured.
const DefaultBOWDimensions = 256

var bowTokenRE = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// BOWClient is a deterministic hashed bag-of-words embedder. Tokens are
// hashed into a fixed-width bucket space and the resulting term-frequency
// vector is L2-normalized. It needs no model files or network access, so it
// backs tests and offline smoke runs; it is not a substitute for a real
// sentence encoder.
type BOWClient struct {
	dim int
}

// NewBOWClient creates a bag-of-words client with the given vector width.
// Widths <= 0 fall back to DefaultBOWDimensions.
func NewBOWClient(dim int) *BOWClient {
	if dim <= 0 {
		dim = DefaultBOWDimensions
	}
	return &BOWClient{dim: dim}
}

// Embed generates one hashed term-frequency vector per text.
func (b *BOWClient) Embed(_ context.Context, texts []string) ([][]float32, error) {
	vecs := make([][]float32, len(texts))
	for i, text := range texts {
		vec := make([]float32, b.dim)
		for _, tok := range bowTokenize(text) {
			h := fnv.New32a()
			h.Write([]byte(tok))
			vec[int(h.Sum32())%b.dim]++
		}
		if normalized := vector.Normalize(vec); normalized != nil {
			vec = normalized
		}
		vecs[i] = vec
	}
	return vecs, nil
}

// EmbedSingle generates an embedding for a single text.
func (b *BOWClient) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	vecs, err := b.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// Dimensions returns the number of dimensions in the embeddings.
func (b *BOWClient) Dimensions() int {
	return b.dim
}

// Close cleans up any resources.
func (b *BOWClient) Close() error {
	return nil
}

func bowTokenize(s string) []string {
	parts := bowTokenRE.Split(strings.ToLower(s), -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if len(p) > 1 {
			out = append(out, p)
		}
	}
	return out
}
