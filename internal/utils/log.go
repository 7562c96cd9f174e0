package utils

import "strings"

// TruncateForLog flattens s onto one line and keeps at most limit runes,
// marking a cut with an ellipsis. Prompts and model replies are multi-line.
func TruncateForLog(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
