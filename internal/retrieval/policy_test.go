package retrieval

import (
	"testing"

	"github.com/hyperjump/kaiwa/internal/models"
)

var policyEntries = []models.CorpusEntry{
	{Question: "What services do you offer?", Answer: "UX design and research."},
	{Question: "How long does a project take?", Answer: "Usually eight weeks."},
	{Question: "Do you work with startups?", Answer: "Yes, often."},
	{Question: "Where are you located?", Answer: "Bangalore and Dubai."},
}

func TestPolicy_DirectAnswerAboveThreshold(t *testing.T) {
	p := NewPolicy(0.85)
	ranked := []models.RankedEntry{
		{Index: 1, Score: 0.92},
		{Index: 0, Score: 0.60},
		{Index: 3, Score: 0.41},
	}
	out := p.Decide(ranked, policyEntries)
	if out.Decision != DirectAnswer {
		t.Fatal("expected DirectAnswer")
	}
	if out.Answer != "Usually eight weeks." {
		t.Errorf("answer = %q", out.Answer)
	}
	if len(out.Alternatives) != 2 || out.Alternatives[0] != "What services do you offer?" {
		t.Errorf("alternatives = %v", out.Alternatives)
	}
	if out.TopScore != 0.92 {
		t.Errorf("top score = %f", out.TopScore)
	}
}

func TestPolicy_ScoreExactlyAtThresholdAnswers(t *testing.T) {
	p := NewPolicy(0.85)
	out := p.Decide([]models.RankedEntry{{Index: 2, Score: 0.85}}, policyEntries)
	if out.Decision != DirectAnswer {
		t.Error("score equal to threshold should answer directly")
	}
}

func TestPolicy_EscalateBelowThreshold(t *testing.T) {
	p := NewPolicy(0.85)
	ranked := []models.RankedEntry{
		{Index: 0, Score: 0.70},
		{Index: 2, Score: 0.55},
	}
	out := p.Decide(ranked, policyEntries)
	if out.Decision != Escalate {
		t.Fatal("expected Escalate")
	}
	if out.Answer != "" {
		t.Errorf("escalate must not carry an answer, got %q", out.Answer)
	}
	// Alternatives are still offered so the user sees related questions.
	if len(out.Alternatives) != 1 || out.Alternatives[0] != "Do you work with startups?" {
		t.Errorf("alternatives = %v", out.Alternatives)
	}
}

func TestPolicy_NoMatches(t *testing.T) {
	p := NewPolicy(0.85)
	out := p.Decide(nil, policyEntries)
	if out.Decision != Escalate {
		t.Error("no matches should escalate")
	}
	if len(out.Alternatives) != 0 {
		t.Errorf("alternatives = %v", out.Alternatives)
	}
}
