package embedding

import (
	"context"
	"math"

	"github.com/hyperjump/kaiwa/pkg/utils"
)

// MockEmbedder generates deterministic pseudo-embeddings from word hashes.
// The same text always maps to the same unit vector, which makes it useful
// for tests and for running without a model.
type MockEmbedder struct {
	dimensions int
}

func NewMockEmbedder(dimensions int) *MockEmbedder {
	if dimensions <= 0 {
		dimensions = 384
	}
	return &MockEmbedder{dimensions: dimensions}
}

func (m *MockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, m.dimensions)
	words := SplitWords(text)
	if len(words) == 0 {
		vec[0] = 1.0
		return vec, nil
	}
	for _, word := range words {
		h := HashString(word)
		for i := range vec {
			vec[i] += float32(math.Sin(float64(h%1000)*0.01 + float64(i)*0.1))
			h = h*31 + 7
		}
	}
	utils.NormalizeL2(vec)
	return vec, nil
}

func (m *MockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := m.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		vectors[i] = vec
	}
	return vectors, nil
}

func (m *MockEmbedder) Dimensions() int { return m.dimensions }

func (m *MockEmbedder) Close() error { return nil }
