package retrieval

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/hyperjump/kaiwa/internal/embedding"
	"github.com/hyperjump/kaiwa/internal/faq"
	"github.com/hyperjump/kaiwa/internal/keyword"
	"github.com/hyperjump/kaiwa/internal/models"
	"github.com/hyperjump/kaiwa/internal/vector"
)

// ErrEmptyCorpus reports that retrieval ran against a corpus with no entries.
var ErrEmptyCorpus = vector.ErrEmptyCorpus

// Result is a retrieval outcome plus how it was produced.
type Result struct {
	Outcome
	// Degraded is true when the embedding capability failed and the keyword
	// index produced the ranking instead.
	Degraded bool
}

// Engine answers queries against the corpus: embed the query, rank by cosine
// similarity, and apply the answer policy. When embedding fails it degrades
// to keyword search rather than failing the turn.
type Engine struct {
	store           *faq.Store
	embedder        embedding.Embedder
	policy          *Policy
	keywordIndex    *keyword.Index
	topK            int
	minKeywordScore float64
	logger          *zap.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the logger for the engine.
func WithLogger(logger *zap.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithKeywordFallback enables the degraded keyword path. minScore is the
// keyword relevance a top hit must reach to answer directly.
func WithKeywordFallback(index *keyword.Index, minScore float64) EngineOption {
	return func(e *Engine) {
		e.keywordIndex = index
		e.minKeywordScore = minScore
	}
}

func NewEngine(store *faq.Store, embedder embedding.Embedder, policy *Policy, topK int, opts ...EngineOption) *Engine {
	e := &Engine{
		store:    store,
		embedder: embedder,
		policy:   policy,
		topK:     topK,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Retrieve answers query from the corpus. The same corpus snapshot backs
// both ranking and answer lookup, so a concurrent rebuild cannot mix
// entries from two corpus generations.
func (e *Engine) Retrieve(ctx context.Context, query string) (Result, error) {
	entries, matrix := e.store.Snapshot()
	if len(entries) == 0 {
		return Result{}, ErrEmptyCorpus
	}

	queryVec, err := e.embedder.Embed(ctx, query)
	if err != nil {
		if e.keywordIndex == nil {
			return Result{}, fmt.Errorf("embed query: %w", err)
		}
		e.logger.Warn("embedding failed, using keyword fallback", zap.Error(err))
		return e.retrieveKeyword(ctx, query, entries)
	}

	ranked, err := vector.Rank(queryVec, matrix, e.topK)
	if err != nil {
		if errors.Is(err, vector.ErrEmptyCorpus) {
			return Result{}, ErrEmptyCorpus
		}
		return Result{}, fmt.Errorf("rank corpus: %w", err)
	}

	outcome := e.policy.Decide(ranked, entries)
	e.logger.Debug("retrieval decision",
		zap.Float64("top_score", outcome.TopScore),
		zap.Bool("direct", outcome.Decision == DirectAnswer))
	return Result{Outcome: outcome}, nil
}

// retrieveKeyword ranks by keyword relevance against the entries snapshot
// taken by Retrieve. Keyword scores are not cosine similarities, so the
// policy threshold does not apply; the top hit answers directly when it
// reaches the configured minimum keyword score.
func (e *Engine) retrieveKeyword(ctx context.Context, query string, entries []models.CorpusEntry) (Result, error) {
	hits, err := e.keywordIndex.Search(ctx, query, e.topK)
	if err != nil {
		return Result{}, fmt.Errorf("keyword fallback: %w", err)
	}

	// The index may briefly lag the corpus during a rebuild; drop hits that
	// point past the snapshot rather than indexing out of range.
	ranked := hits[:0]
	for _, r := range hits {
		if r.Index < len(entries) {
			ranked = append(ranked, r)
		}
	}

	if len(ranked) == 0 || ranked[0].Score < e.minKeywordScore {
		var alternatives []string
		var topScore float64
		if len(ranked) > 0 {
			topScore = ranked[0].Score
			for _, r := range ranked[1:] {
				alternatives = append(alternatives, entries[r.Index].Question)
			}
		}
		return Result{
			Outcome:  Outcome{Decision: Escalate, Alternatives: alternatives, TopScore: topScore},
			Degraded: true,
		}, nil
	}

	alternatives := make([]string, 0, len(ranked)-1)
	for _, r := range ranked[1:] {
		alternatives = append(alternatives, entries[r.Index].Question)
	}
	return Result{
		Outcome: Outcome{
			Decision:     DirectAnswer,
			Answer:       entries[ranked[0].Index].Answer,
			Alternatives: alternatives,
			TopScore:     ranked[0].Score,
		},
		Degraded: true,
	}, nil
}
