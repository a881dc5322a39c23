// Package models defines core data structures for the FAQ corpus, sessions, and turns.
package models

// CorpusEntry is a single question/answer pair from the FAQ corpus.
// Entries are immutable once loaded; the slice order defines the implicit
// index used to align entries with embedding matrix rows.
type CorpusEntry struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// RankedEntry is a corpus index with its similarity score against a query.
type RankedEntry struct {
	Index int     `json:"index"`
	Score float64 `json:"score"`
}
