package encode

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stancelab/stancesweep/pkg/embedder"
	"github.com/stancelab/stancesweep/pkg/types"
)

// countingClient wraps the bag-of-words embedder and counts provider calls.
type countingClient struct {
	*embedder.BOWClient
	calls atomic.Int64
	texts atomic.Int64
}

func (c *countingClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	c.calls.Add(1)
	c.texts.Add(int64(len(texts)))
	return c.BOWClient.Embed(ctx, texts)
}

func TestEncodeCorpusPreservesOrder(t *testing.T) {
	ctx := context.Background()
	client := embedder.NewBOWClient(64)

	enc, err := NewEncoder(client, Options{})
	require.NoError(t, err)
	defer enc.Close()

	docs := []types.DomainDocument{
		{ID: "a", Text: "wind power"},
		{ID: "b", Text: "coal power"},
		{ID: "c", Text: "wind power"},
	}

	matrix, err := enc.EncodeCorpus(ctx, docs)
	require.NoError(t, err)
	require.Len(t, matrix, 3)

	// Positional indexing: identical text embeds identically, row per doc.
	assert.Equal(t, matrix[0], matrix[2])
	assert.NotEqual(t, matrix[0], matrix[1])
}

func TestEncodeCorpusRejectsEmptyText(t *testing.T) {
	ctx := context.Background()
	enc, err := NewEncoder(embedder.NewBOWClient(64), Options{})
	require.NoError(t, err)
	defer enc.Close()

	_, err = enc.EncodeCorpus(ctx, []types.DomainDocument{{ID: "x", Text: "   "}})
	assert.Error(t, err)
}

func TestEncodeUsesCache(t *testing.T) {
	ctx := context.Background()
	client := &countingClient{BOWClient: embedder.NewBOWClient(64)}

	enc, err := NewEncoder(client, Options{InMemoryCache: true, BatchSize: 2})
	require.NoError(t, err)
	defer enc.Close()

	texts := []string{"one", "two", "three"}

	first, err := enc.Encode(ctx, texts)
	require.NoError(t, err)
	sentFirst := client.texts.Load()
	assert.EqualValues(t, 3, sentFirst)

	second, err := enc.Encode(ctx, texts)
	require.NoError(t, err)
	assert.Equal(t, first, second, "cached vectors must round-trip exactly")
	assert.EqualValues(t, sentFirst, client.texts.Load(), "second pass must be served from cache")
}

func TestEncodeBatches(t *testing.T) {
	ctx := context.Background()
	client := &countingClient{BOWClient: embedder.NewBOWClient(32)}

	enc, err := NewEncoder(client, Options{BatchSize: 2})
	require.NoError(t, err)
	defer enc.Close()

	_, err = enc.Encode(ctx, []string{"a b", "c d", "e f", "g h", "i j"})
	require.NoError(t, err)
	assert.EqualValues(t, 3, client.calls.Load(), "5 texts at batch size 2 is 3 calls")
}

func TestVectorCodecRoundTrip(t *testing.T) {
	vec := []float32{0.25, -1.5, 0, 3.75}
	assert.Equal(t, vec, decodeVector(encodeVector(vec)))
}
