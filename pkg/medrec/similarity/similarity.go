// Package similarity scores how alike two tokens are using normalized
// Levenshtein distance.
package similarity

import (
	"strings"
	"unicode/utf8"

	"github.com/hbollon/go-edlib"
)

// Similarity returns 1 - distance/max(len(a), len(b)) over the case-folded
// inputs, where distance is the Levenshtein edit distance with unit costs and
// lengths are counted in runes. Equal strings (including two empty strings)
// score 1.0.
func Similarity(a, b string) float64 {
	a = strings.ToLower(a)
	b = strings.ToLower(b)
	if a == b {
		return 1.0
	}

	maxLen := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > maxLen {
		maxLen = n
	}
	if maxLen == 0 {
		return 1.0
	}

	distance := edlib.LevenshteinDistance(a, b)
	return 1.0 - float64(distance)/float64(maxLen)
}

// Distance returns the raw Levenshtein edit distance between the
// case-folded inputs.
func Distance(a, b string) int {
	return edlib.LevenshteinDistance(strings.ToLower(a), strings.ToLower(b))
}
