package identity

import (
	"strings"
	"unicode"
	"unicode/utf8"

	model "github.com/seambreak/gully/internal/domain/model"
)

// Normalize canonicalizes a scorecard name for comparison: lower-cased,
// punctuation stripped, tokens joined without separators. "M.S. Dhoni"
// and "MS Dhoni" both normalize to "msdhoni".
func Normalize(name string) string {
	return strings.Join(Tokens(name), "")
}

// Tokens splits a name into its lower-cased word tokens. Anything that
// is not a letter or digit separates tokens.
func Tokens(name string) []string {
	return strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// Fingerprint derives the duplicate-submission key of a record: one
// scorecard line per match, club and normalized name.
func Fingerprint(rec model.PerformanceRecord) string {
	return rec.MatchID + "|" + strings.ToLower(rec.Club) + "|" + Normalize(rec.Name)
}

// containsName reports whether one normalized name contains the other.
// Fragments under three runes are ignored so bare initials never match
// through this rule.
func containsName(a, b string) bool {
	shorter := a
	if utf8.RuneCountInString(b) < utf8.RuneCountInString(a) {
		shorter = b
	}
	if utf8.RuneCountInString(shorter) < 3 {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// abbreviationMatch reports whether two token lists describe the same
// name with some tokens shortened to initials, e.g. "R. Sharma" against
// "Rohit Sharma" or "Rohit S". Each position must hold either the same
// token or a short (at most two rune) prefix of its counterpart.
func abbreviationMatch(a, b []string) bool {
	if len(a) == 0 || len(a) != len(b) {
		return false
	}
	for i := range a {
		x, y := a[i], b[i]
		if x == y {
			continue
		}
		short, long := x, y
		if utf8.RuneCountInString(short) > utf8.RuneCountInString(long) {
			short, long = long, short
		}
		if utf8.RuneCountInString(short) <= 2 && strings.HasPrefix(long, short) {
			continue
		}
		return false
	}
	return true
}
