// Package reason implements the validation engine: duplicate, contradiction
// and weak-evidence detection over a bounded window of recent claims.
package reason

import (
	"strings"

	"github.com/ppetrenko/veridex/internal/textutil"
)

// DuplicateJaccardThreshold is the token-overlap level above which two
// statements count as duplicates even without containment.
const DuplicateJaccardThreshold = 0.85

// ContradictionRule is one auditable pattern → verdict entry. Rules receive
// normalized statements and fire only after the shared-subject gate has
// already passed.
type ContradictionRule struct {
	Name    string
	Applies func(a, b string) bool
}

// ContradictionRules is the tunable rule table, evaluated in order. Any
// single match marks the pair contradictory.
var ContradictionRules = []ContradictionRule{
	{
		// Exactly one side is negated.
		Name: "negation_mismatch",
		Applies: func(a, b string) bool {
			return textutil.ContainsNegation(a) != textutil.ContainsNegation(b)
		},
	},
	{
		Name: "requires_conflict",
		Applies: func(a, b string) bool {
			return (strings.Contains(a, "requires") && strings.Contains(b, "does not require")) ||
				(strings.Contains(b, "requires") && strings.Contains(a, "does not require"))
		},
	},
	{
		Name: "is_not_conflict",
		Applies: func(a, b string) bool {
			pa, pb := " "+a+" ", " "+b+" "
			return (strings.Contains(pa, " is ") && strings.Contains(pb, " is not ")) ||
				(strings.Contains(pb, " is ") && strings.Contains(pa, " is not "))
		},
	},
	{
		// Both sides carry numbers and the literal sets differ. Literals
		// are compared as strings so "2.0" and "2" stay distinct.
		Name: "numeric_conflict",
		Applies: func(a, b string) bool {
			numsA := textutil.ExtractNumbers(a)
			numsB := textutil.ExtractNumbers(b)
			if len(numsA) == 0 || len(numsB) == 0 {
				return false
			}
			return !sameNumberSet(numsA, numsB)
		},
	},
}

func sameNumberSet(a, b []string) bool {
	setA := make(map[string]bool, len(a))
	for _, n := range a {
		setA[n] = true
	}
	setB := make(map[string]bool, len(b))
	for _, n := range b {
		setB[n] = true
	}
	if len(setA) != len(setB) {
		return false
	}
	for n := range setA {
		if !setB[n] {
			return false
		}
	}
	return true
}

// IsDuplicate reports whether two statements are near-duplicates: one
// normalized form contains the other, or token overlap exceeds the Jaccard
// threshold.
func IsDuplicate(a, b string) bool {
	na, nb := textutil.Normalize(a), textutil.Normalize(b)
	if na == "" || nb == "" {
		return false
	}
	if strings.Contains(nb, na) || strings.Contains(na, nb) {
		return true
	}
	return textutil.Jaccard(na, nb) > DuplicateJaccardThreshold
}

// IsContradiction reports whether two statements conflict under the rule
// table. Pairs without at least one shared non-stopword subject token never
// contradict; the gate keeps unrelated claims from tripping the negation
// rule.
func IsContradiction(a, b string) bool {
	na, nb := textutil.Normalize(a), textutil.Normalize(b)
	if na == "" || nb == "" {
		return false
	}
	if len(textutil.SharedSubjectTokens(na, nb)) == 0 {
		return false
	}
	for _, rule := range ContradictionRules {
		if rule.Applies(na, nb) {
			return true
		}
	}
	return false
}
