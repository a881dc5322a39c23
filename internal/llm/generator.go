// Package llm provides the generative text capability behind escalated
// turns: an OpenAI-compatible chat client and a mock for offline use.
package llm

import (
	"context"
	"errors"

	"github.com/hyperjump/kaiwa/internal/models"
)

var (
	// ErrGenerativeCall reports that the model endpoint failed.
	ErrGenerativeCall = errors.New("generative call failed")
	// ErrTimeout reports that the model did not answer within the deadline.
	ErrTimeout = errors.New("generative call timed out")
)

// Generator produces a reply to a conversation.
type Generator interface {
	Generate(ctx context.Context, messages []models.Message, opts ...Option) (string, error)
}

// Options carries per-call generation parameters.
type Options struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

// Option overrides a generation parameter for a single call.
type Option func(*Options)

func WithModel(model string) Option {
	return func(o *Options) { o.Model = model }
}

func WithTemperature(temperature float64) Option {
	return func(o *Options) { o.Temperature = temperature }
}

func WithMaxTokens(maxTokens int) Option {
	return func(o *Options) { o.MaxTokens = maxTokens }
}
