// Package normalize turns free-form (often speech-derived) text into the
// lowercase ASCII form the symptom vocabulary is matched against.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Func maps raw text to its normalized form.
type Func func(string) string

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Text lowercases s, removes every character outside [a-z0-9] and ASCII
// whitespace, collapses whitespace runs to a single space and trims the ends.
// Empty input yields "".
func Text(s string) string {
	if s == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(s))
	pendingSpace := false

	for _, r := range s {
		r = unicode.ToLower(r)
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
		case isSpace(r):
			pendingSpace = true
		}
	}

	return b.String()
}

// Folded strips combining marks before applying Text, so "Fièvre" becomes
// "fievre" instead of "fivre".
func Folded(s string) string {
	if s == "" {
		return ""
	}
	folded, _, err := transform.String(stripMarks, s)
	if err != nil {
		return Text(s)
	}
	return Text(folded)
}

// Tokens splits normalized text on single spaces. Empty tokens are dropped.
func Tokens(normalized string) []string {
	return strings.Fields(normalized)
}

func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}
