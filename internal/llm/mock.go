package llm

import (
	"context"

	"github.com/hyperjump/kaiwa/internal/models"
)

// MockGenerator replies from a script keyed by the last user message, with a
// fixed default for everything else. For tests and offline runs.
type MockGenerator struct {
	Replies map[string]string
	Default string
}

func NewMockGenerator(defaultReply string) *MockGenerator {
	return &MockGenerator{Default: defaultReply}
}

func (m *MockGenerator) Generate(_ context.Context, messages []models.Message, _ ...Option) (string, error) {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role != models.RoleUser {
			continue
		}
		if reply, ok := m.Replies[messages[i].Text]; ok {
			return reply, nil
		}
		break
	}
	return m.Default, nil
}
