package output

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// SanitizeTerminal makes untrusted text (process titles, container names,
// paths) safe to print by rewriting control characters and invalid UTF-8
// as visible escapes:
//   - "hi\x1b[31m" -> `hi\x1b[31m`
//   - "bad:\xff"   -> `bad:\xff`
//
// Tabs and newlines are kept.
func SanitizeTerminal(s string) string {
	return sanitize(s, true)
}

// SanitizeCell is SanitizeTerminal for single-line contexts such as table
// cells, where tabs and newlines are escaped too.
func SanitizeCell(s string) string {
	return sanitize(s, false)
}

func sanitize(s string, keepLayout bool) string {
	clean := true
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if needsEscape(r, size, keepLayout) {
			clean = false
			break
		}
		i += size
	}
	if clean {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + 8)
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		switch {
		case r == utf8.RuneError && size == 1:
			fmt.Fprintf(&b, `\x%02x`, s[i])
		case needsEscape(r, size, keepLayout):
			q := strconv.QuoteRuneToASCII(r)
			b.WriteString(q[1 : len(q)-1])
		default:
			b.WriteString(s[i : i+size])
		}
		i += size
	}
	return b.String()
}

func needsEscape(r rune, size int, keepLayout bool) bool {
	if r == utf8.RuneError && size == 1 {
		return true
	}
	if keepLayout && (r == '\n' || r == '\t') {
		return false
	}
	return unicode.IsControl(r)
}
