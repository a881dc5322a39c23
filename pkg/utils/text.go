// Package utils provides small shared helpers: logging setup, vector math,
// and text formatting.
package utils

// Truncate shortens s to at most maxLen characters, marking the cut with
// "...". Non-positive maxLen disables truncation.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
