// Package agent routes conversation turns through a per-turn state machine:
// a supervisor classifies the user's intent and dispatches to the matching
// node, which produces the reply for the turn.
package agent

import "strings"

// Intent is the supervisor's classification of a user message.
type Intent int

const (
	// IntentOther covers messages outside the assistant's scope. It is
	// also the fail-closed default for unparseable classifier output.
	IntentOther Intent = iota
	// IntentIntroducing: the user is sharing who they are (name, email).
	IntentIntroducing
	// IntentAnswering: the user asks a question the corpus may answer.
	IntentAnswering
	// IntentCareer: the user asks about job openings.
	IntentCareer
)

func (i Intent) String() string {
	switch i {
	case IntentIntroducing:
		return "introducing"
	case IntentAnswering:
		return "answering"
	case IntentCareer:
		return "career"
	default:
		return "other"
	}
}

// ParseIntent maps raw classifier output to an Intent. The classifier is
// instructed to answer with a single word; anything else fails closed to
// IntentOther rather than guessing.
func ParseIntent(raw string) Intent {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "introducing":
		return IntentIntroducing
	case "answering":
		return IntentAnswering
	case "career":
		return IntentCareer
	default:
		return IntentOther
	}
}
