// Package textutil provides the lexical primitives behind duplicate and
// contradiction detection: canonicalization, token sets, Jaccard overlap,
// negation and number extraction. All functions are total; they never fail
// on odd input.
package textutil

import (
	"regexp"
	"strings"
	"unicode"
)

// NegationTerms mark a statement as negated when any of them appears as a
// token of the normalized text.
var NegationTerms = map[string]bool{
	"not":     true,
	"no":      true,
	"cannot":  true,
	"never":   true,
	"lacks":   true,
	"fails":   true,
	"without": true,
}

// StopWords are removed before computing subject-token overlap so function
// words never count as a shared subject.
var StopWords = map[string]bool{
	"the": true, "a": true, "an": true, "is": true, "are": true,
	"was": true, "were": true, "of": true, "to": true, "and": true,
	"or": true, "in": true, "on": true, "for": true, "with": true,
	"by": true, "this": true, "that": true,
}

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	numberRe     = regexp.MustCompile(`\b\d+(?:\.\d+)?\b`)
)

// Normalize lower-cases, strips punctuation, collapses whitespace and trims.
// Idempotent: Normalize(Normalize(x)) == Normalize(x).
func Normalize(text string) string {
	lowered := strings.ToLower(strings.TrimSpace(text))
	var b strings.Builder
	b.Grow(len(lowered))
	for _, r := range lowered {
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			continue
		}
		b.WriteRune(r)
	}
	collapsed := whitespaceRe.ReplaceAllString(b.String(), " ")
	return strings.TrimSpace(collapsed)
}

// TokenSet splits normalized text on whitespace into a set; order and
// duplicates are discarded.
func TokenSet(text string) map[string]bool {
	tokens := make(map[string]bool)
	for _, tok := range strings.Fields(Normalize(text)) {
		tokens[tok] = true
	}
	return tokens
}

// Jaccard returns |A∩B| / |A∪B| over the two texts' token sets. Empty
// inputs are defined as maximally dissimilar (0), not an error.
func Jaccard(a, b string) float64 {
	sa, sb := TokenSet(a), TokenSet(b)
	if len(sa) == 0 || len(sb) == 0 {
		return 0
	}
	inter := 0
	for tok := range sa {
		if sb[tok] {
			inter++
		}
	}
	union := len(sa) + len(sb) - inter
	return float64(inter) / float64(union)
}

// ContainsNegation reports whether any token of the normalized text is a
// negation term.
func ContainsNegation(text string) bool {
	for tok := range TokenSet(text) {
		if NegationTerms[tok] {
			return true
		}
	}
	return false
}

// ExtractNumbers returns all integer and decimal literals in appearance
// order, as literal substrings. Formatting distinctions ("2.0" vs "2")
// survive so later set comparisons treat them as different values.
func ExtractNumbers(text string) []string {
	return numberRe.FindAllString(text, -1)
}

// SharedSubjectTokens returns the token-set intersection of the two texts
// after stop-word removal. An empty result gates contradiction checks off
// for unrelated statements.
func SharedSubjectTokens(a, b string) map[string]bool {
	sa, sb := TokenSet(a), TokenSet(b)
	shared := make(map[string]bool)
	for tok := range sa {
		if StopWords[tok] {
			continue
		}
		if sb[tok] && !StopWords[tok] {
			shared[tok] = true
		}
	}
	return shared
}
