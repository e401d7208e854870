package reason

import "testing"

func TestIsDuplicate_Containment(t *testing.T) {
	a := "The cortex stores memory traces"
	b := "The cortex stores memory traces across distributed regions"
	if !IsDuplicate(a, b) {
		t.Error("Expected containment to count as duplicate")
	}
	if !IsDuplicate(b, a) {
		t.Error("Expected containment to be symmetric")
	}
}

func TestIsDuplicate_PunctuationAndCaseInsensitive(t *testing.T) {
	if !IsDuplicate("Neurons fire in patterns.", "neurons fire in patterns") {
		t.Error("Expected normalization to erase case and punctuation differences")
	}
}

func TestIsDuplicate_HighOverlapWithoutContainment(t *testing.T) {
	// 12 of 14 union tokens shared: Jaccard ~0.857 > 0.85. Reordered so
	// neither normalized form contains the other.
	a := "alpha beta gamma delta epsilon zeta eta theta iota kappa lambda mu nu"
	b := "beta alpha gamma delta epsilon zeta eta theta iota kappa lambda mu xi"
	if !IsDuplicate(a, b) {
		t.Error("Expected high token overlap to count as duplicate")
	}
}

func TestIsDuplicate_DistinctStatements(t *testing.T) {
	if IsDuplicate("the sky is blue", "neurons fire in patterns") {
		t.Error("Expected unrelated statements not to be duplicates")
	}
}

func TestIsDuplicate_EmptyNeverMatches(t *testing.T) {
	if IsDuplicate("", "anything") || IsDuplicate("", "") {
		t.Error("Expected empty statements never to be duplicates")
	}
}

func TestIsContradiction_NegationMismatch(t *testing.T) {
	a := "the system is stable under load"
	b := "the system is not stable under load"
	if !IsContradiction(a, b) {
		t.Error("Expected negation mismatch to be a contradiction")
	}
	if !IsContradiction(b, a) {
		t.Error("Expected contradiction to be symmetric")
	}
}

func TestIsContradiction_BothNegatedIsNotAContradiction(t *testing.T) {
	a := "the model cannot generalize"
	b := "the model never generalizes"
	if IsContradiction(a, b) {
		t.Error("Expected two negated statements not to contradict via negation rule")
	}
}

func TestIsContradiction_SharedSubjectGate(t *testing.T) {
	// Negation mismatch, but no shared non-stopword token.
	a := "the sky is blue"
	b := "the ocean is not deep"
	if IsContradiction(a, b) {
		t.Error("Expected no contradiction without a shared subject")
	}
}

func TestIsContradiction_RequiresConflict(t *testing.T) {
	a := "consciousness requires biological substrates"
	b := "consciousness does not require biological substrates"
	if !IsContradiction(a, b) {
		t.Error("Expected requires/does-not-require to be a contradiction")
	}
}

func TestIsContradiction_NumericConflict(t *testing.T) {
	a := "the reaction takes 20 seconds"
	b := "the reaction takes 45 seconds"
	if !IsContradiction(a, b) {
		t.Error("Expected differing number sets to be a contradiction")
	}
}

func TestIsContradiction_SameNumbersDoNotConflict(t *testing.T) {
	a := "the reaction takes 20 seconds"
	b := "a 20 second reaction was observed"
	if IsContradiction(a, b) {
		t.Error("Expected identical number sets not to conflict")
	}
}

func TestIsContradiction_NumberLiteralsCompareAsStrings(t *testing.T) {
	// The literals differ as strings, so the sets differ.
	a := "the interval is 2.0 seconds"
	b := "the interval is 2 seconds"
	if !IsContradiction(a, b) {
		t.Error("Expected 2.0 vs 2 to count as a numeric conflict")
	}
}

func TestIsContradiction_OneSidedNumbersNeverConflict(t *testing.T) {
	a := "the reaction takes 20 seconds"
	b := "the reaction takes a while"
	if IsContradiction(a, b) {
		t.Error("Expected numeric rule to need numbers on both sides")
	}
}
