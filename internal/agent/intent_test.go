package agent

import "testing"

func TestParseIntent(t *testing.T) {
	tests := []struct {
		raw  string
		want Intent
	}{
		{"introducing", IntentIntroducing},
		{"answering", IntentAnswering},
		{"career", IntentCareer},
		{"other", IntentOther},
		{"  Answering \n", IntentAnswering},
		{"CAREER", IntentCareer},
		{"", IntentOther},
		{"answering, because the user asked a question", IntentOther},
		{"unknown-label", IntentOther},
	}
	for _, tt := range tests {
		if got := ParseIntent(tt.raw); got != tt.want {
			t.Errorf("ParseIntent(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestIntentString(t *testing.T) {
	if IntentAnswering.String() != "answering" || IntentOther.String() != "other" {
		t.Error("unexpected intent names")
	}
}
