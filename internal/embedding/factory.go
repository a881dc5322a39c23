package embedding

import (
	"fmt"
	"os"
	"time"

	"github.com/hyperjump/kaiwa/internal/config"
)

// New builds the embedder named by cfg.Type: "onnx", "openai", or "mock".
func New(cfg config.EmbeddingConfig) (Embedder, error) {
	switch cfg.Type {
	case "onnx":
		return NewONNXEmbedder(cfg.ModelPath, cfg.Dimensions, cfg.MaxTokens, cfg.CacheSize)
	case "openai":
		apiKey := os.Getenv(cfg.APIKeyEnv)
		return NewOpenAIEmbedder(cfg.BaseURL, apiKey, cfg.Model, cfg.Dimensions,
			time.Duration(cfg.TimeoutSecs)*time.Second), nil
	case "mock":
		return NewMockEmbedder(cfg.Dimensions), nil
	default:
		return nil, fmt.Errorf("unknown embedding type %q", cfg.Type)
	}
}
