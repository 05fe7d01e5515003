package util

import (
	"strings"
	"unicode"
)

// SanitizeString trims whitespace and removes control and format characters
// (including a leading byte order mark) from s.
func SanitizeString(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) || unicode.Is(unicode.Cf, r) {
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}
