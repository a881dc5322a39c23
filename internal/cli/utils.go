// Package cli provides CLI utilities for Kaiwa.
package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/hyperjump/kaiwa/internal/models"
)

// TurnOutputFormat is the format for turn output.
type TurnOutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText TurnOutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON TurnOutputFormat = "json"
)

// WriteTurn writes a turn response to w in the given format.
func WriteTurn(w io.Writer, response *models.TurnResponse, format TurnOutputFormat) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(response)
	default:
		writeTurnText(w, response)
		return nil
	}
}

func writeTurnText(w io.Writer, response *models.TurnResponse) {
	fmt.Fprintf(w, "%s\n", response.Reply)
	if len(response.Alternatives) > 0 {
		fmt.Fprintln(w, "\nRelated questions:")
		for i, alt := range response.Alternatives {
			fmt.Fprintf(w, "  %d. %s\n", i+1, alt)
		}
	}
}
