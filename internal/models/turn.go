package models

import "fmt"

// Message roles used in conversation history and generative calls.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single conversation message.
type Message struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// TurnRequest is a single conversational turn submitted by a caller.
type TurnRequest struct {
	SessionID string `json:"session_id"`
	Text      string `json:"text"`
}

// Validate ensures the turn request has usable fields.
// Returns an error when the message text is empty. A missing session id is
// allowed; the caller assigns a fresh one.
func (r *TurnRequest) Validate() error {
	if r.Text == "" {
		return fmt.Errorf("text cannot be empty")
	}
	return nil
}

// TurnResponse is the outcome of one turn: the reply plus any alternative
// FAQ questions the user may have meant.
type TurnResponse struct {
	SessionID    string   `json:"session_id"`
	Reply        string   `json:"reply"`
	Alternatives []string `json:"alternatives,omitempty"`
}
