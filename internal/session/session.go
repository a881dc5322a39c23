// Package session keys conversation state by session id and serializes the
// turns of each session.
package session

import (
	"github.com/hyperjump/kaiwa/internal/models"
)

// Session is the per-conversation state carried across turns.
type Session struct {
	ID      string
	History []models.Message

	// Name and Email are filled once and never overwritten by a later
	// empty extraction.
	Name  string
	Email string

	// Last retrieval outcome, offered as related questions on later turns.
	LastScore   float64
	LastOptions []string
}

// MergeAttributes applies first-non-empty-wins semantics: a known value is
// never replaced, and an empty extraction never clears one.
func (s *Session) MergeAttributes(name, email string) {
	if s.Name == "" && name != "" {
		s.Name = name
	}
	if s.Email == "" && email != "" {
		s.Email = email
	}
}

// Append adds a message to the session history.
func (s *Session) Append(role, text string) {
	s.History = append(s.History, models.Message{Role: role, Text: text})
}
