package utils

import "strings"

// TruncateForLog keeps at most limit runes of s for a log preview. Model
// requests and responses go through it before they reach debug logs.
func TruncateForLog(s string, limit int) string {
	s = strings.TrimSpace(s)
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
