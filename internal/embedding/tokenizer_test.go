package embedding

import "testing"

func TestWordTokenizer_Tokenize(t *testing.T) {
	tok := &WordTokenizer{}
	ids, attn, types := tok.Tokenize("hello world", 10)
	if len(ids) != 10 || len(attn) != 10 || len(types) != 10 {
		t.Fatalf("lengths: %d %d %d", len(ids), len(attn), len(types))
	}
	if ids[0] != 101 {
		t.Errorf("expected CLS 101, got %d", ids[0])
	}
	if attn[0] != 1 || attn[1] != 1 || attn[2] != 1 {
		t.Error("attention mask should cover CLS and both words")
	}
	if ids[3] != 102 {
		t.Errorf("expected SEP 102 after words, got %d", ids[3])
	}
}

func TestWordTokenizer_CaseInsensitive(t *testing.T) {
	tok := &WordTokenizer{}
	a, _, _ := tok.Tokenize("What Services", 8)
	b, _, _ := tok.Tokenize("what services", 8)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("token IDs differ at %d: %d vs %d", i, a[i], b[i])
		}
	}
}

func TestSplitWords(t *testing.T) {
	words := SplitWords("  What  do  You  ")
	if len(words) != 3 {
		t.Fatalf("expected 3 words, got %v", words)
	}
	if words[0] != "what" || words[2] != "you" {
		t.Errorf("expected lowercased words, got %v", words)
	}
	if SplitWords("") != nil {
		t.Error("empty string should return nil")
	}
}

func TestHashString(t *testing.T) {
	if HashString("pricing") != HashString("pricing") {
		t.Error("hash should be deterministic")
	}
	if HashString("a") < 0 {
		t.Error("hash should be non-negative")
	}
}
