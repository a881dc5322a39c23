package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  host: "127.0.0.1"
  port: 9000
corpus:
  source_path: "./faq/faqs.pdf"
retrieval:
  threshold: 0.9
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 9000 {
		t.Errorf("unexpected server config: %+v", cfg.Server)
	}
	if cfg.Retrieval.Threshold != 0.9 {
		t.Errorf("threshold = %v, want 0.9", cfg.Retrieval.Threshold)
	}
	if cfg.Debug {
		t.Error("debug should default to false when unset")
	}
}

func TestLoad_defaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 8081\n"), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Retrieval.TopK != 4 {
		t.Errorf("top_k default = %d, want 4", cfg.Retrieval.TopK)
	}
	if cfg.Retrieval.Threshold != 0.85 {
		t.Errorf("threshold default = %v, want 0.85", cfg.Retrieval.Threshold)
	}
	if cfg.Embedding.Dimensions != 384 {
		t.Errorf("dimensions default = %d, want 384", cfg.Embedding.Dimensions)
	}
	if cfg.Session.TTLMinutes != 0 {
		t.Errorf("ttl default = %d, want 0 (retain forever)", cfg.Session.TTLMinutes)
	}
}

func TestLoad_expandPathDotSlashRelativeToConfigDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
corpus:
  source_path: "./faq/source.pdf"
  corpus_path: "./faq/corpus.json"
  embeddings_path: "./faq/embeddings.bin"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(dir, "faq/source.pdf")
	if cfg.Corpus.SourcePath != want {
		t.Errorf("source_path = %q, want %q", cfg.Corpus.SourcePath, want)
	}
	if !filepath.IsAbs(cfg.Corpus.EmbeddingsPath) {
		t.Errorf("embeddings_path should be absolute, got %q", cfg.Corpus.EmbeddingsPath)
	}
}

func TestLoad_missingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}
