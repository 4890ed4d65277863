package utils

import "strings"

// TruncateForLog shortens the provided string to the specified limit, appending an ellipsis when truncated.
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

// CollapseSpaces replaces every run of whitespace with a single space.
func CollapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
