// Package config provides configuration loading and structs for the Kaiwa server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Server    ServerConfig    `yaml:"server"`
	Corpus    CorpusConfig    `yaml:"corpus"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	LLM       LLMConfig       `yaml:"llm"`
	Career    CareerConfig    `yaml:"career"`
	Session   SessionConfig   `yaml:"session"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// CorpusConfig holds the FAQ source document and cache file paths.
type CorpusConfig struct {
	SourcePath     string `yaml:"source_path"`
	CorpusPath     string `yaml:"corpus_path"`
	EmbeddingsPath string `yaml:"embeddings_path"`
	// Watch enables rebuilding the cache when the source document changes.
	Watch bool `yaml:"watch"`
}

// EmbeddingConfig selects and configures the embedding capability.
// Type is one of "onnx" (local model, requires CGO), "openai"
// (OpenAI-compatible HTTP endpoint), or "mock" (deterministic, for tests).
type EmbeddingConfig struct {
	Type        string `yaml:"type"`
	ModelPath   string `yaml:"model_path"`
	Dimensions  int    `yaml:"dimensions"`
	MaxTokens   int    `yaml:"max_tokens"`
	CacheSize   int    `yaml:"cache_size"`
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// RetrievalConfig holds FAQ ranking and decision settings.
type RetrievalConfig struct {
	// TopK is how many corpus entries to rank per query; the top one may be
	// returned as the answer, the rest become alternative questions.
	TopK int `yaml:"top_k"`
	// Threshold is the minimum similarity for answering directly from the
	// corpus. Below it the turn escalates to the generative fallback.
	Threshold float64 `yaml:"threshold"`
	// KeywordIndexPath is where the Bleve index over corpus questions lives.
	// Empty disables the keyword degraded path.
	KeywordIndexPath string `yaml:"keyword_index_path"`
	// MinKeywordScore is the minimum normalized keyword score for answering
	// from the corpus when the embedding capability is unavailable.
	MinKeywordScore float64 `yaml:"min_keyword_score"`
}

// LLMConfig configures the generative capability (classification, extraction,
// fallback answers) via an OpenAI-compatible chat completion endpoint.
type LLMConfig struct {
	BaseURL     string  `yaml:"base_url"`
	Model       string  `yaml:"model"`
	APIKeyEnv   string  `yaml:"api_key_env"`
	TimeoutSecs int     `yaml:"timeout_secs"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
}

// CareerConfig holds the job-listing source settings.
type CareerConfig struct {
	URL         string `yaml:"url"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// SessionConfig holds session store settings.
type SessionConfig struct {
	// TTLMinutes evicts sessions idle for longer than this. 0 retains
	// sessions for the process lifetime.
	TTLMinutes int `yaml:"ttl_minutes"`
	// TranscriptDBPath is the SQLite file for archiving conversation
	// transcripts. Empty disables archiving.
	TranscriptDBPath string `yaml:"transcript_db_path"`
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Corpus.SourcePath = expandPath(cfg.Corpus.SourcePath, configDir)
	cfg.Corpus.CorpusPath = expandPath(cfg.Corpus.CorpusPath, configDir)
	cfg.Corpus.EmbeddingsPath = expandPath(cfg.Corpus.EmbeddingsPath, configDir)
	cfg.Embedding.ModelPath = expandPath(cfg.Embedding.ModelPath, configDir)
	if cfg.Retrieval.KeywordIndexPath != "" {
		cfg.Retrieval.KeywordIndexPath = expandPath(cfg.Retrieval.KeywordIndexPath, configDir)
	}
	if cfg.Session.TranscriptDBPath != "" {
		cfg.Session.TranscriptDBPath = expandPath(cfg.Session.TranscriptDBPath, configDir)
	}

	return &cfg, nil
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
