// Package keyword provides a Bleve index over corpus questions. It serves as
// the degraded retrieval path when the embedding capability is unavailable.
package keyword

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"

	"github.com/hyperjump/kaiwa/internal/models"
)

// Index is a keyword index keyed by corpus position. It is rebuilt on every
// corpus load, which keeps it consistent with the embedding matrix and is
// cheap at question-corpus scale.
type Index struct {
	index bleve.Index
}

// NewIndex creates a keyword index. With an empty path the index lives in
// memory; otherwise it is created on disk, replacing any previous index so
// it can never serve a stale corpus.
func NewIndex(path string) (*Index, error) {
	im := bleve.NewIndexMapping()
	docMapping := bleve.NewDocumentMapping()
	textFieldMapping := bleve.NewTextFieldMapping()
	// Standard analyzer (lowercase + tokenize, no stemming) so query words
	// match question words exactly.
	textFieldMapping.Analyzer = standard.Name
	docMapping.AddFieldMappingsAt("question", textFieldMapping)
	im.DefaultMapping = docMapping

	if path == "" {
		index, err := bleve.NewMemOnly(im)
		if err != nil {
			return nil, fmt.Errorf("create keyword index: %w", err)
		}
		return &Index{index: index}, nil
	}

	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("clear keyword index: %w", err)
	}
	index, err := bleve.New(path, im)
	if err != nil {
		return nil, fmt.Errorf("create keyword index: %w", err)
	}
	return &Index{index: index}, nil
}

type indexedQuestion struct {
	Question string `json:"question"`
}

// Reindex replaces the index contents with the given corpus entries.
// Positions beyond the new corpus are deleted, so a rebuild onto a smaller
// corpus never leaves stale ids behind.
func (x *Index) Reindex(ctx context.Context, entries []models.CorpusEntry) error {
	prev, err := x.index.DocCount()
	if err != nil {
		return fmt.Errorf("count indexed questions: %w", err)
	}

	batch := x.index.NewBatch()
	for i, entry := range entries {
		if err := batch.Index(strconv.Itoa(i), indexedQuestion{Question: entry.Question}); err != nil {
			return fmt.Errorf("index question %d: %w", i, err)
		}
	}
	for i := uint64(len(entries)); i < prev; i++ {
		batch.Delete(strconv.FormatUint(i, 10))
	}
	if err := x.index.Batch(batch); err != nil {
		return fmt.Errorf("apply keyword batch: %w", err)
	}
	return nil
}

// Search returns up to limit corpus positions ranked by keyword relevance.
func (x *Index) Search(ctx context.Context, query string, limit int) ([]models.RankedEntry, error) {
	q := bleve.NewMatchQuery(query)
	q.SetField("question")
	req := bleve.NewSearchRequest(q)
	req.Size = limit
	result, err := x.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("keyword search: %w", err)
	}

	out := make([]models.RankedEntry, 0, len(result.Hits))
	for _, hit := range result.Hits {
		pos, err := strconv.Atoi(hit.ID)
		if err != nil {
			continue
		}
		out = append(out, models.RankedEntry{Index: pos, Score: hit.Score})
	}
	return out, nil
}

// Close releases the underlying index.
func (x *Index) Close() error {
	return x.index.Close()
}
