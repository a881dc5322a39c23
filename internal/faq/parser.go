// Package faq maintains the question/answer corpus and its embedding cache.
package faq

import (
	"regexp"
	"strings"

	"github.com/hyperjump/kaiwa/internal/models"
)

// questionStart matches a line that begins a question: optional list
// numbering followed by an interrogative keyword. Case-insensitive.
var questionStart = regexp.MustCompile(`(?i)^(?:\d+\.\s*)?(What|How|Why|When|Which|Where|Do|Does|Is)\b(.+)`)

// ParsePages segments document pages into question/answer entries.
//
// A line matching questionStart opens a new entry; its list numbering is
// stripped. Questions may span several lines and are complete once a line
// ends with '?'. Every following line until the next question start belongs
// to the answer. Lines containing "https" or "FAQ" are boilerplate (headers,
// footers, links) and are skipped. Only entries with both a question and an
// answer are kept, so an incomplete trailing entry is dropped.
func ParsePages(pages []string) []models.CorpusEntry {
	var entries []models.CorpusEntry
	var current models.CorpusEntry
	var questionLines []string
	collecting := false

	commit := func() {
		if current.Question != "" && current.Answer != "" {
			current.Answer = strings.TrimSpace(current.Answer)
			entries = append(entries, current)
		}
		current = models.CorpusEntry{}
	}

	for _, page := range pages {
		for _, line := range strings.Split(page, "\n") {
			if strings.Contains(line, "https") || strings.Contains(line, "FAQ") {
				continue
			}
			line = strings.TrimSpace(line)

			if m := questionStart.FindStringSubmatch(line); m != nil {
				commit()
				questionLines = nil
				text := m[1] + m[2]
				if strings.HasSuffix(line, "?") {
					current.Question = strings.TrimSpace(text)
					collecting = false
				} else {
					questionLines = append(questionLines, text)
					collecting = true
				}
				continue
			}

			if collecting {
				questionLines = append(questionLines, line)
				if strings.HasSuffix(line, "?") {
					current.Question = strings.TrimSpace(strings.Join(questionLines, " "))
					questionLines = nil
					collecting = false
				}
				continue
			}

			if current.Question == "" || line == "" {
				continue
			}
			current.Answer += line + " "
		}
	}
	commit()

	return entries
}

// Questions returns the question text of each entry, in corpus order.
func Questions(entries []models.CorpusEntry) []string {
	questions := make([]string, len(entries))
	for i, e := range entries {
		questions[i] = e.Question
	}
	return questions
}
