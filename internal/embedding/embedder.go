// Package embedding provides the embedding capability: local ONNX inference,
// an OpenAI-compatible HTTP client, a deterministic mock, and an LRU cache.
package embedding

import "context"

// Embedder produces vector embeddings for text. Implementations must return
// vectors of a fixed dimension, one per input, in input order.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	Close() error
}
