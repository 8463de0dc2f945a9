// Package utils holds small helpers shared by the provider adapters and
// services.
package utils

import "strings"

const ellipsis = "..."

// TruncateForLog turns s into a single-line preview of at most limit runes
// plus an ellipsis. Runs of whitespace, newlines included, collapse to one
// space so multi-line prompts stay on one log line.
func TruncateForLog(s string, limit int) string {
	if limit <= 0 {
		return ""
	}

	s = strings.Join(strings.Fields(s), " ")

	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + ellipsis
}
