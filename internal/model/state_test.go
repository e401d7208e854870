package model

import "testing"

func TestDefaultState_HasZeroedCounters(t *testing.T) {
	st := DefaultState()
	for _, c := range append(Classes, CounterTotal) {
		if st.Counters[c] != 0 {
			t.Errorf("Expected zero counter for %s, got %d", c, st.Counters[c])
		}
	}
}

func TestCountClaim(t *testing.T) {
	st := DefaultState()
	st.CountClaim(ClassTheory)
	st.CountClaim(ClassTheory)
	st.CountClaim(ClassFact)

	if st.Counters[ClassTheory] != 2 {
		t.Errorf("Expected THEORY=2, got %d", st.Counters[ClassTheory])
	}
	if st.Counters[ClassFact] != 1 {
		t.Errorf("Expected FACT=1, got %d", st.Counters[ClassFact])
	}
	if st.Counters[CounterTotal] != 3 {
		t.Errorf("Expected TOTAL=3, got %d", st.Counters[CounterTotal])
	}
}

func TestCountClaim_NilCountersAreSafe(t *testing.T) {
	var st ProcessState
	st.CountClaim(ClassUnsure)
	if st.Counters[ClassUnsure] != 1 || st.Counters[CounterTotal] != 1 {
		t.Errorf("Expected counters initialized on first use, got %v", st.Counters)
	}
}

func TestNormalize_FillsNilCounters(t *testing.T) {
	st := ProcessState{LastValidatorRun: "2026-02-01T00:00:00Z"}.Normalize()
	if st.Counters == nil {
		t.Fatal("Expected counters map after Normalize")
	}
	if st.LastValidatorRun != "2026-02-01T00:00:00Z" {
		t.Error("Expected existing fields preserved")
	}
}
