package resolve

import (
	"strings"
	"unicode/utf8"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Field similarity tiers, highest first
const (
	ExactScore     = 20.0
	PrefixScore    = 15.0
	SubstringScore = 10.0

	levenshteinWeight = 5.0
	similarTextWeight = 3.0
)

// FieldSimilarity scores how well value matches query, in [0, 20].
// Comparison is case-insensitive; exact beats prefix beats substring, and
// anything else gets a blend of edit distance and common-substring overlap
// that never reaches the substring tier.
func FieldSimilarity(query, value string) float64 {
	q := strings.ToLower(strings.TrimSpace(query))
	v := strings.ToLower(strings.TrimSpace(value))
	if q == "" || v == "" {
		return 0
	}

	switch {
	case q == v:
		return ExactScore
	case strings.HasPrefix(v, q):
		return PrefixScore
	case strings.Contains(v, q):
		return SubstringScore
	}

	maxLen := utf8.RuneCountInString(q)
	if n := utf8.RuneCountInString(v); n > maxLen {
		maxLen = n
	}
	dist := fuzzy.LevenshteinDistance(q, v)
	distance := float64(maxLen-dist) / float64(maxLen) * levenshteinWeight
	overlap := similarTextPercent(q, v) / 100 * similarTextWeight
	return distance + overlap
}

// similarTextPercent counts characters shared by recursively matching the
// longest common substring and its left and right remainders, as a
// percentage of the combined length.
func similarTextPercent(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 0
	}
	return float64(commonChars(ra, rb)*2) * 100 / float64(total)
}

func commonChars(a, b []rune) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	bestLen, bestA, bestB := 0, 0, 0
	for i := range a {
		for j := range b {
			k := 0
			for i+k < len(a) && j+k < len(b) && a[i+k] == b[j+k] {
				k++
			}
			if k > bestLen {
				bestLen, bestA, bestB = k, i, j
			}
		}
	}
	if bestLen == 0 {
		return 0
	}
	return bestLen +
		commonChars(a[:bestA], b[:bestB]) +
		commonChars(a[bestA+bestLen:], b[bestB+bestLen:])
}
