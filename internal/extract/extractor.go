// Package extract provides page-level text extraction from FAQ source documents.
package extract

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrDocumentRead indicates the source document is missing or unreadable.
var ErrDocumentRead = errors.New("document read failed")

// Extractor extracts text from document files as an ordered sequence of
// page-level blocks (PDF pages, spreadsheet sheets, or the whole file).
type Extractor struct{}

// NewExtractor returns a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Pages reads the file at path and returns its text as ordered page blocks.
// PDFs yield one block per page, spreadsheets one per sheet; DOCX and plain
// text yield a single block. Returns ErrDocumentRead if the file cannot be
// read or decoded.
func (e *Extractor) Pages(path string) ([]string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDocumentRead, path, err)
	}
	ext := strings.ToLower(filepath.Ext(path))
	pages, err := e.pagesFromBytes(content, ext)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDocumentRead, path, err)
	}
	return pages, nil
}

func (e *Extractor) pagesFromBytes(content []byte, ext string) ([]string, error) {
	switch ext {
	case ".pdf":
		return extractPDFPages(content)
	case ".docx":
		text, err := extractDOCX(content)
		if err != nil {
			return nil, err
		}
		return []string{text}, nil
	case ".xlsx":
		return extractExcelSheets(content)
	default:
		// Everything else is treated as plain UTF-8 text.
		return []string{extractPlain(content)}, nil
	}
}
