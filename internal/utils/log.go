package utils

import "strings"

// TruncateForLog returns s on a single line, whitespace runs collapsed to one
// space, cut to limit runes with "..." appended when cut.
func TruncateForLog(s string, limit int) string {
	if limit <= 0 {
		return ""
	}

	line := strings.Join(strings.Fields(s), " ")

	runes := []rune(line)
	if len(runes) <= limit {
		return line
	}
	return string(runes[:limit]) + "..."
}
