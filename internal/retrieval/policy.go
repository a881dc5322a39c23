// Package retrieval turns ranked corpus matches into an answer decision.
package retrieval

import "github.com/hyperjump/kaiwa/internal/models"

// Decision says how a query should be answered.
type Decision int

const (
	// DirectAnswer: the top match is confident enough to serve verbatim.
	DirectAnswer Decision = iota
	// Escalate: no match cleared the threshold; hand off to the generative path.
	Escalate
)

// Outcome is the result of applying the answer policy to ranked matches.
type Outcome struct {
	Decision Decision
	// Answer is the top entry's answer text. Set only for DirectAnswer.
	Answer string
	// Alternatives are the questions of the remaining matches, best first.
	// They are offered to the user as related questions either way.
	Alternatives []string
	// TopScore is the best similarity score, kept for logging and status.
	TopScore float64
}

// Policy decides between answering from the corpus and escalating.
type Policy struct {
	threshold float64
}

func NewPolicy(threshold float64) *Policy {
	return &Policy{threshold: threshold}
}

// Decide applies the confidence threshold to ranked matches. The top match
// answers directly when its score reaches the threshold; a score exactly at
// the threshold counts as confident.
func (p *Policy) Decide(ranked []models.RankedEntry, entries []models.CorpusEntry) Outcome {
	if len(ranked) == 0 {
		return Outcome{Decision: Escalate}
	}

	alternatives := make([]string, 0, len(ranked)-1)
	for _, r := range ranked[1:] {
		alternatives = append(alternatives, entries[r.Index].Question)
	}

	top := ranked[0]
	if top.Score >= p.threshold {
		return Outcome{
			Decision:     DirectAnswer,
			Answer:       entries[top.Index].Answer,
			Alternatives: alternatives,
			TopScore:     top.Score,
		}
	}
	return Outcome{
		Decision:     Escalate,
		Alternatives: alternatives,
		TopScore:     top.Score,
	}
}
