package validators

import (
	"strings"
	"unicode"
)

// SanitizeString trims surrounding whitespace, strips control characters and
// truncates to maxLen runes. Review text and contact fields arrive as free
// text pasted from UIs, so truncation must not split a multi-byte rune.
func SanitizeString(input string, maxLen int) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			return -1
		}
		return r
	}, input)
	trimmed := strings.TrimSpace(cleaned)
	if maxLen > 0 {
		runes := []rune(trimmed)
		if len(runes) > maxLen {
			return string(runes[:maxLen])
		}
	}
	return trimmed
}
