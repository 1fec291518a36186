// Package utils provides shared utilities for text, math, and logging.
package utils

import "strings"

// Truncate returns s truncated to maxLen bytes. If maxLen is 0 or negative,
// returns s unchanged.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	return s[:maxLen]
}

// CollapseWhitespace replaces newlines and tabs with single spaces and
// squeezes runs of spaces, so multi-line text embeds as one line.
func CollapseWhitespace(s string) string {
	replaced := strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ", "\t", " ").Replace(s)
	return strings.Join(strings.Fields(replaced), " ")
}
