package faq

import (
	"testing"
)

func TestParsePages_singleEntry(t *testing.T) {
	pages := []string{"What services do you offer?\nWe offer UX design,\nresearch and branding."}
	entries := ParsePages(pages)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Question != "What services do you offer?" {
		t.Errorf("question = %q", entries[0].Question)
	}
	if entries[0].Answer != "We offer UX design, research and branding." {
		t.Errorf("answer = %q", entries[0].Answer)
	}
}

func TestParsePages_stripsNumbering(t *testing.T) {
	entries := ParsePages([]string{"3. How long does a project take?\nUsually eight weeks."})
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Question != "How long does a project take?" {
		t.Errorf("question = %q", entries[0].Question)
	}
}

func TestParsePages_multiLineQuestion(t *testing.T) {
	pages := []string{"Which design tools does\nyour team prefer to work with?\nMostly Figma."}
	entries := ParsePages(pages)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	want := "Which design tools does your team prefer to work with?"
	if entries[0].Question != want {
		t.Errorf("question = %q, want %q", entries[0].Question, want)
	}
	if entries[0].Answer != "Mostly Figma." {
		t.Errorf("answer = %q", entries[0].Answer)
	}
}

func TestParsePages_skipsBoilerplate(t *testing.T) {
	pages := []string{
		"Company FAQ page 1\nhttps://example.com/contact\nDo you work with startups?\nYes, often.",
	}
	entries := ParsePages(pages)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Question != "Do you work with startups?" {
		t.Errorf("question = %q", entries[0].Question)
	}
}

func TestParsePages_multipleEntriesAcrossPages(t *testing.T) {
	pages := []string{
		"What is UX research?\nLearning how users behave.\nWhy does it matter?\nIt prevents",
		"costly redesigns later.",
	}
	entries := ParsePages(pages)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[1].Question != "Why does it matter?" {
		t.Errorf("second question = %q", entries[1].Question)
	}
	if entries[1].Answer != "It prevents costly redesigns later." {
		t.Errorf("second answer = %q", entries[1].Answer)
	}
}

func TestParsePages_dropsIncompleteTrailingEntry(t *testing.T) {
	entries := ParsePages([]string{"Is there a warranty?"})
	if len(entries) != 0 {
		t.Errorf("expected no entries for question without answer, got %d", len(entries))
	}
}

func TestParsePages_answerBeforeFirstQuestionIgnored(t *testing.T) {
	entries := ParsePages([]string{"Welcome to our help pages.\nWhere are you located?\nBangalore and Dubai."})
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Answer != "Bangalore and Dubai." {
		t.Errorf("answer = %q", entries[0].Answer)
	}
}

func TestParsePages_caseInsensitiveKeyword(t *testing.T) {
	entries := ParsePages([]string{"does the quote include revisions?\nTwo rounds are included."})
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
}

func TestParsePages_deterministic(t *testing.T) {
	pages := []string{"What is branding?\nYour visual identity.\nHow do we start?\nBook a call."}
	first := ParsePages(pages)
	second := ParsePages(pages)
	if len(first) != len(second) {
		t.Fatal("non-deterministic entry count")
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("entry %d differs between runs", i)
		}
	}
}

func TestQuestions(t *testing.T) {
	entries := ParsePages([]string{"What is UX?\nUser experience.\nWhy hire us?\nExperience."})
	qs := Questions(entries)
	if len(qs) != 2 || qs[0] != "What is UX?" || qs[1] != "Why hire us?" {
		t.Errorf("questions = %v", qs)
	}
}
