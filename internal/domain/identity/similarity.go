package identity

import (
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// Similarity scores how alike two normalized names are, in [0, 1].
type Similarity interface {
	Ratio(a, b string) float64
}

// LevenshteinSimilarity derives a ratio from edit distance over the
// longer name's rune count. Identical names score 1, disjoint names
// approach 0.
type LevenshteinSimilarity struct{}

// Ratio implements Similarity.
func (LevenshteinSimilarity) Ratio(a, b string) float64 {
	if a == b {
		return 1
	}
	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	longest := la
	if lb > longest {
		longest = lb
	}
	if longest == 0 {
		return 1
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(longest)
}
