package faq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/hyperjump/kaiwa/internal/embedding"
	"github.com/hyperjump/kaiwa/internal/extract"
	"github.com/hyperjump/kaiwa/internal/models"
	"github.com/hyperjump/kaiwa/internal/vector"
)

// ErrCacheCorrupt reports that the persisted corpus or embedding matrix is
// unreadable or inconsistent and must be rebuilt from the source document.
var ErrCacheCorrupt = errors.New("embedding cache corrupt")

// Store holds the question/answer corpus together with one embedding per
// question. It persists both to disk so restarts skip re-embedding, and
// rebuilds from the source document when the cache is missing or corrupt.
type Store struct {
	sourcePath     string
	corpusPath     string
	embeddingsPath string

	extractor *extract.Extractor
	embedder  embedding.Embedder
	logger    *zap.Logger

	loadOnce sync.Once
	loadErr  error

	mu      sync.RWMutex
	entries []models.CorpusEntry
	matrix  [][]float32
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets the logger for the store.
func WithLogger(logger *zap.Logger) StoreOption {
	return func(s *Store) {
		s.logger = logger
	}
}

func NewStore(sourcePath, corpusPath, embeddingsPath string, extractor *extract.Extractor, embedder embedding.Embedder, opts ...StoreOption) *Store {
	s := &Store{
		sourcePath:     sourcePath,
		corpusPath:     corpusPath,
		embeddingsPath: embeddingsPath,
		extractor:      extractor,
		embedder:       embedder,
		logger:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load populates the store from the persisted cache, falling back to a full
// rebuild from the source document when the cache is absent or corrupt. It
// runs at most once; later calls return the first result. Use Rebuild to
// refresh an already-loaded store.
func (s *Store) Load(ctx context.Context) error {
	s.loadOnce.Do(func() {
		s.loadErr = s.load(ctx)
	})
	return s.loadErr
}

func (s *Store) load(ctx context.Context) error {
	err := s.loadCache()
	if err == nil {
		s.mu.RLock()
		count := len(s.entries)
		s.mu.RUnlock()
		s.logger.Info("loaded corpus from cache",
			zap.Int("entries", count),
			zap.String("corpus", s.corpusPath))
		return nil
	}
	if !errors.Is(err, ErrCacheCorrupt) && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if errors.Is(err, ErrCacheCorrupt) {
		s.logger.Warn("embedding cache corrupt, rebuilding", zap.Error(err))
	}
	return s.Rebuild(ctx)
}

// loadCache reads the persisted corpus and matrix. Any inconsistency between
// the two (or with the embedder's dimension) is reported as ErrCacheCorrupt.
func (s *Store) loadCache() error {
	data, err := os.ReadFile(s.corpusPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return os.ErrNotExist
		}
		return fmt.Errorf("read corpus: %w", err)
	}

	var entries []models.CorpusEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("%w: decode corpus: %v", ErrCacheCorrupt, err)
	}

	matrix, err := vector.LoadMatrix(s.embeddingsPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return os.ErrNotExist
		}
		return fmt.Errorf("%w: load embeddings: %v", ErrCacheCorrupt, err)
	}

	if len(matrix) != len(entries) {
		return fmt.Errorf("%w: %d entries but %d embeddings", ErrCacheCorrupt, len(entries), len(matrix))
	}
	if len(matrix) > 0 && len(matrix[0]) != s.embedder.Dimensions() {
		return fmt.Errorf("%w: embedding dimension %d, embedder produces %d",
			ErrCacheCorrupt, len(matrix[0]), s.embedder.Dimensions())
	}

	s.mu.Lock()
	s.entries = entries
	s.matrix = matrix
	s.mu.Unlock()
	return nil
}

// Rebuild extracts the source document, segments it into entries, embeds
// every question, and persists the result. The in-memory corpus is swapped
// only after persistence succeeds, so a failed rebuild leaves the previous
// corpus serving.
func (s *Store) Rebuild(ctx context.Context) error {
	s.logger.Info("building corpus from source", zap.String("source", s.sourcePath))

	pages, err := s.extractor.Pages(s.sourcePath)
	if err != nil {
		return fmt.Errorf("extract source: %w", err)
	}

	entries := ParsePages(pages)
	if len(entries) == 0 {
		return fmt.Errorf("no question/answer entries found in %s", s.sourcePath)
	}

	matrix, err := s.embedder.EmbedBatch(ctx, Questions(entries))
	if err != nil {
		return fmt.Errorf("embed questions: %w", err)
	}

	if err := s.persist(entries, matrix); err != nil {
		return err
	}

	s.mu.Lock()
	s.entries = entries
	s.matrix = matrix
	s.mu.Unlock()

	s.logger.Info("corpus built", zap.Int("entries", len(entries)))
	return nil
}

// persist writes the corpus and matrix atomically (temp file + rename), so a
// crash mid-write never leaves a partial cache behind.
func (s *Store) persist(entries []models.CorpusEntry, matrix [][]float32) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode corpus: %w", err)
	}

	dir := filepath.Dir(s.corpusPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create corpus dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".corpus-*.json")
	if err != nil {
		return fmt.Errorf("create temp corpus: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write corpus: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close corpus: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.corpusPath); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("rename corpus: %w", err)
	}

	if err := vector.SaveMatrix(s.embeddingsPath, matrix); err != nil {
		return fmt.Errorf("save embeddings: %w", err)
	}
	return nil
}

// Snapshot returns the current corpus and embedding matrix. Callers must not
// mutate either; a rebuild replaces the slices rather than editing them.
func (s *Store) Snapshot() ([]models.CorpusEntry, [][]float32) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entries, s.matrix
}

// Len returns the number of corpus entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
