package util

import (
	"strings"
	"unicode"
)

// SanitizeLine trims a single-line value and drops control and invisible
// format characters, so that visually identical names compare equal.
func SanitizeLine(value string) string {
	builder := strings.Builder{}
	builder.Grow(len(value))

	for _, char := range value {
		if unicode.IsControl(char) || isInvisibleUnicode(char) {
			continue
		}

		builder.WriteRune(char)
	}

	return strings.TrimSpace(builder.String())
}

// SanitizeText keeps line breaks and tabs but removes NUL bytes, which
// PostgreSQL refuses in text columns.
func SanitizeText(value string) string {
	return strings.ReplaceAll(value, "\x00", "")
}

// isInvisibleUnicode returns true for zero-width, formatting, and other
// invisible Unicode characters.
func isInvisibleUnicode(r rune) bool {
	switch r {
	case
		'\u200B', // Zero-Width Space
		'\u200C', // Zero-Width Non-Joiner
		'\u200D', // Zero-Width Joiner
		'\u2060', // Word Joiner
		'\uFEFF', // Zero-Width No-Break Space / BOM
		'\uFFF9', // Interlinear Annotation Anchor
		'\uFFFA', // Interlinear Annotation Separator
		'\uFFFB': // Interlinear Annotation Terminator
		return true
	}

	return unicode.Is(unicode.Cf, r)
}
