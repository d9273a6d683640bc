package embedder

import (
	"context"
	"fmt"
)

// Client converts text into dense embedding vectors. The pipeline treats the
// underlying model as a pretrained black box: it is never trained or
// fine-tuned here, only queried.
type Client interface {
	// Embed generates embeddings for the given texts, one vector per text,
	// in input order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedSingle generates an embedding for a single text.
	EmbedSingle(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the number of dimensions in the embeddings.
	Dimensions() int

	// Close cleans up any resources.
	Close() error
}

// Config holds provider-independent embedding settings.
type Config struct {
	// Provider selects the backend: "embedeverything", "openai", or "bow".
	Provider string
	// Model is the provider-specific model identifier.
	Model string
	// APIKey authenticates remote providers; ignored by local ones.
	APIKey string
	// BaseURL overrides the remote endpoint for OpenAI-compatible servers.
	BaseURL string
	// BatchSize caps the number of texts sent per provider call.
	// Values <= 0 fall back to DefaultBatchSize.
	BatchSize int
	// Device requests a compute device ("auto", "cpu", "cuda"). The default
	// is "auto". Providers that do not expose device selection ignore it;
	// none of them treat it as an error.
	Device string
	// Dimensions is the expected embedding width, used by providers that
	// cannot report it themselves.
	Dimensions int
}

// DefaultBatchSize is used when Config.BatchSize is unset.
const DefaultBatchSize = 64

// NewClient constructs the embedding client named by cfg.Provider.
func NewClient(cfg Config) (Client, error) {
	switch cfg.Provider {
	case "", "embedeverything":
		return NewEmbedEverythingClient(cfg)
	case "openai":
		return NewOpenAIClient(cfg)
	case "bow":
		return NewBOWClient(cfg.Dimensions), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}
}
