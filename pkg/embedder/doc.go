// Package embedder provides text embedding clients for vector representations.
//
// This package defines the Client interface and provides implementations for
// local and remote embedding providers.
//
// # Supported Providers
//
//   - EmbedEverything: sentence-transformer models executed locally
//   - OpenAI: text-embedding-3-small and compatible endpoints, including
//     self-hosted OpenAI-compatible servers via Config.BaseURL
//   - BOW: a deterministic hashed bag-of-words embedder for offline use
//
// # Usage
//
//	client, err := embedder.NewClient(embedder.Config{
//	    Provider: "embedeverything",
//	    Model:    "all-MiniLM-L6-v2",
//	})
//
//	embeddings, err := client.Embed(ctx, []string{"hello world"})
//
// # Batch Processing
//
// The Client interface supports batch embedding for efficiency:
//   - Embed(): Embed multiple texts in a single request
//   - EmbedSingle(): Convenience method for single text
//
// Implementations handle batching internally based on provider limits.
package embedder
