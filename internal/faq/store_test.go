package faq

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/hyperjump/kaiwa/internal/embedding"
	"github.com/hyperjump/kaiwa/internal/extract"
)

const sampleSource = `What services do you offer?
UX design and research.
How long does a project take?
Usually eight weeks.
Do you work with startups?
Yes, often.`

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	source := filepath.Join(dir, "faq.txt")
	if err := os.WriteFile(source, []byte(sampleSource), 0o644); err != nil {
		t.Fatal(err)
	}
	store := NewStore(
		source,
		filepath.Join(dir, "corpus.json"),
		filepath.Join(dir, "embeddings.bin"),
		extract.NewExtractor(),
		embedding.NewMockEmbedder(32),
	)
	return store, dir
}

func TestStore_LoadBuildsFromSource(t *testing.T) {
	store, dir := newTestStore(t)
	if err := store.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	if store.Len() != 3 {
		t.Fatalf("expected 3 entries, got %d", store.Len())
	}
	entries, matrix := store.Snapshot()
	if len(entries) != len(matrix) {
		t.Errorf("entries %d, matrix rows %d", len(entries), len(matrix))
	}
	if len(matrix[0]) != 32 {
		t.Errorf("embedding dimension = %d", len(matrix[0]))
	}
	for _, name := range []string{"corpus.json", "embeddings.bin"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("expected %s to be persisted: %v", name, err)
		}
	}
}

func TestStore_LoadUsesCache(t *testing.T) {
	store, dir := newTestStore(t)
	if err := store.Load(context.Background()); err != nil {
		t.Fatal(err)
	}

	// A second store pointed at a now-missing source must still load,
	// proving it reads the cache rather than re-extracting.
	cached := NewStore(
		filepath.Join(dir, "no-such-source.txt"),
		filepath.Join(dir, "corpus.json"),
		filepath.Join(dir, "embeddings.bin"),
		extract.NewExtractor(),
		embedding.NewMockEmbedder(32),
	)
	if err := cached.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	if cached.Len() != 3 {
		t.Errorf("expected 3 cached entries, got %d", cached.Len())
	}
}

func TestStore_CorruptCorpusTriggersRebuild(t *testing.T) {
	store, dir := newTestStore(t)
	if err := store.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "corpus.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	again, _ := newTestStore(t)
	again.corpusPath = filepath.Join(dir, "corpus.json")
	again.embeddingsPath = filepath.Join(dir, "embeddings.bin")
	if err := again.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	if again.Len() != 3 {
		t.Errorf("expected rebuild to recover 3 entries, got %d", again.Len())
	}
}

func TestStore_DimensionMismatchTriggersRebuild(t *testing.T) {
	store, dir := newTestStore(t)
	if err := store.Load(context.Background()); err != nil {
		t.Fatal(err)
	}

	// An embedder with a different dimension must not serve stale vectors.
	source := filepath.Join(dir, "faq.txt")
	mismatched := NewStore(
		source,
		filepath.Join(dir, "corpus.json"),
		filepath.Join(dir, "embeddings.bin"),
		extract.NewExtractor(),
		embedding.NewMockEmbedder(16),
	)
	if err := mismatched.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	_, matrix := mismatched.Snapshot()
	if len(matrix[0]) != 16 {
		t.Errorf("expected rebuilt 16-dim matrix, got %d", len(matrix[0]))
	}
}

func TestStore_RebuildFailsOnEmptySource(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "empty.txt")
	if err := os.WriteFile(source, []byte("no questions here at all"), 0o644); err != nil {
		t.Fatal(err)
	}
	store := NewStore(
		source,
		filepath.Join(dir, "corpus.json"),
		filepath.Join(dir, "embeddings.bin"),
		extract.NewExtractor(),
		embedding.NewMockEmbedder(8),
	)
	if err := store.Load(context.Background()); err == nil {
		t.Fatal("expected error for source without entries")
	}
}
