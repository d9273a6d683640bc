// Package encode pre-computes the embedding matrix for the domain corpus.
// The matrix is built exactly once per run and shared read-only by every
// retrieval call across the whole sweep.
package encode

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"log/slog"
	"math"
	"strings"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/stancelab/stancesweep/pkg/embedder"
	"github.com/stancelab/stancesweep/pkg/types"
)

// Options configures an Encoder.
type Options struct {
	// CachePath is a directory for the on-disk embedding cache. Empty
	// disables caching unless InMemoryCache is set.
	CachePath string
	// InMemoryCache uses a throwaway in-process cache. Intended for tests.
	InMemoryCache bool
	// BatchSize caps texts per provider call; <= 0 uses the provider default.
	BatchSize int
	Logger    *slog.Logger
}

// Encoder embeds corpus documents, reusing cached vectors across runs so a
// repeated sweep over the same corpus skips the expensive model calls.
type Encoder struct {
	client    embedder.Client
	cache     *badger.DB
	batchSize int
	logger    *slog.Logger
}

// NewEncoder creates an Encoder over the given embedding client.
func NewEncoder(client embedder.Client, opts Options) (*Encoder, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = embedder.DefaultBatchSize
	}

	e := &Encoder{client: client, batchSize: batchSize, logger: logger}

	if opts.CachePath != "" || opts.InMemoryCache {
		badgerOpts := badger.DefaultOptions(opts.CachePath).WithLogger(nil)
		if opts.InMemoryCache {
			badgerOpts = badgerOpts.WithInMemory(true)
		}
		db, err := badger.Open(badgerOpts)
		if err != nil {
			return nil, fmt.Errorf("failed to open embedding cache: %w", err)
		}
		e.cache = db
	}

	return e, nil
}

// Close releases the cache, if any. The embedding client is owned by the
// caller and is not closed here.
func (e *Encoder) Close() error {
	if e.cache == nil {
		return nil
	}
	return e.cache.Close()
}

// EncodeCorpus produces one embedding per document, preserving input order so
// the matrix can be indexed positionally. Whitespace-only text is invalid
// input and fails the run.
func (e *Encoder) EncodeCorpus(ctx context.Context, docs []types.DomainDocument) ([][]float32, error) {
	texts := make([]string, len(docs))
	for i, d := range docs {
		if strings.TrimSpace(d.Text) == "" {
			return nil, fmt.Errorf("domain document %s has empty text", d.ID)
		}
		texts[i] = d.Text
	}
	return e.Encode(ctx, texts)
}

// EncodeQueries embeds the exemplar query texts in order.
func (e *Encoder) EncodeQueries(ctx context.Context, queries []types.Query) ([][]float32, error) {
	texts := make([]string, len(queries))
	for i, q := range queries {
		texts[i] = q.Text
	}
	return e.Encode(ctx, texts)
}

// Encode embeds texts in order, serving cache hits first and batching the
// misses through the provider.
func (e *Encoder) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))

	missing := make([]int, 0, len(texts))
	for i, text := range texts {
		if cached, ok := e.lookup(text); ok {
			vectors[i] = cached
			continue
		}
		missing = append(missing, i)
	}

	if len(missing) < len(texts) {
		e.logger.Debug("embedding cache hits", "hits", len(texts)-len(missing), "total", len(texts))
	}

	for start := 0; start < len(missing); start += e.batchSize {
		end := start + e.batchSize
		if end > len(missing) {
			end = len(missing)
		}
		batchIdx := missing[start:end]

		batch := make([]string, len(batchIdx))
		for j, idx := range batchIdx {
			batch[j] = texts[idx]
		}

		embedded, err := e.client.Embed(ctx, batch)
		if err != nil {
			return nil, fmt.Errorf("failed to embed batch: %w", err)
		}
		if len(embedded) != len(batch) {
			return nil, fmt.Errorf("embedding count mismatch: sent %d texts, got %d vectors", len(batch), len(embedded))
		}

		for j, idx := range batchIdx {
			vectors[idx] = embedded[j]
			e.store(texts[idx], embedded[j])
		}
	}

	return vectors, nil
}

func cacheKey(text string) []byte {
	sum := sha256.Sum256([]byte(text))
	return sum[:]
}

func (e *Encoder) lookup(text string) ([]float32, bool) {
	if e.cache == nil {
		return nil, false
	}

	var vec []float32
	err := e.cache.View(func(txn *badger.Txn) error {
		item, err := txn.Get(cacheKey(text))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			vec = decodeVector(val)
			return nil
		})
	})
	if err != nil {
		return nil, false
	}
	return vec, true
}

func (e *Encoder) store(text string, vec []float32) {
	if e.cache == nil {
		return
	}
	// Cache failures only cost a re-encode on the next run.
	if err := e.cache.Update(func(txn *badger.Txn) error {
		return txn.Set(cacheKey(text), encodeVector(vec))
	}); err != nil {
		e.logger.Warn("failed to cache embedding", "error", err)
	}
}

func encodeVector(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(v))
	}
	return buf
}

func decodeVector(buf []byte) []float32 {
	vec := make([]float32, len(buf)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[4*i:]))
	}
	return vec
}
