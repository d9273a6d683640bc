package embedder

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"
)

// OpenAIClient implements the Client interface against any OpenAI-compatible
// embeddings endpoint. Calls run through a circuit breaker so a failing
// remote endpoint aborts the run quickly instead of hammering it.
type OpenAIClient struct {
	client *openai.Client
	config Config
	cb     *gobreaker.CircuitBreaker
}

// NewOpenAIClient creates a new OpenAI embedding client.
// Remote models run wherever the provider chooses; Config.Device is ignored.
func NewOpenAIClient(config Config) (*OpenAIClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("openai embedder requires an API key")
	}

	var client *openai.Client
	if config.BaseURL != "" {
		clientConfig := openai.DefaultConfig(config.APIKey)
		clientConfig.BaseURL = config.BaseURL
		client = openai.NewClientWithConfig(clientConfig)
	} else {
		client = openai.NewClient(config.APIKey)
	}

	if config.Model == "" {
		config.Model = string(openai.SmallEmbedding3)
	}

	st := gobreaker.Settings{
		Name:    "openai-embeddings",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
	}

	return &OpenAIClient{
		client: client,
		config: config,
		cb:     gobreaker.NewCircuitBreaker(st),
	}, nil
}

// Embed generates embeddings for the given texts, batching requests
// according to Config.BatchSize.
func (c *OpenAIClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	batchSize := c.config.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	embeddings := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += batchSize {
		end := start + batchSize
		if end > len(texts) {
			end = len(texts)
		}

		batch, err := c.embedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		embeddings = append(embeddings, batch...)
	}
	return embeddings, nil
}

func (c *OpenAIClient) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := c.cb.Execute(func() (interface{}, error) {
		return c.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Input: texts,
			Model: openai.EmbeddingModel(c.config.Model),
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate embeddings: %w", err)
	}

	response := resp.(openai.EmbeddingResponse)
	if len(response.Data) != len(texts) {
		return nil, fmt.Errorf("embedding count mismatch: sent %d texts, got %d vectors", len(texts), len(response.Data))
	}

	embeddings := make([][]float32, len(response.Data))
	for i, d := range response.Data {
		embeddings[i] = d.Embedding
	}
	return embeddings, nil
}

// EmbedSingle generates an embedding for a single text.
func (c *OpenAIClient) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := c.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("no embeddings returned")
	}
	return embeddings[0], nil
}

// Dimensions returns the number of dimensions in the embeddings.
func (c *OpenAIClient) Dimensions() int {
	if c.config.Dimensions > 0 {
		return c.config.Dimensions
	}
	return 1536
}

// Close cleans up any resources.
func (c *OpenAIClient) Close() error {
	return nil
}
