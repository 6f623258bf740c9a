package validators

import "strings"

// SanitizeString trims surrounding whitespace and truncates to maxLen runes.
func SanitizeString(value string, maxLen int) string {
	trimmed := strings.TrimSpace(value)
	if maxLen > 0 && len([]rune(trimmed)) > maxLen {
		return string([]rune(trimmed)[:maxLen])
	}
	return trimmed
}
