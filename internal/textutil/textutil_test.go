package textutil

import "testing"

func TestNormalize_Basic(t *testing.T) {
	got := Normalize("  The Mind, Emerges!  From   Matter. ")
	want := "the mind emerges from matter"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"Consciousness requires biological substrates.",
		"  WEIRD   spacing\tand\nnewlines ",
		"",
		"already normalized text",
		"symbols: $100 + 50% = profit?",
	}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: first %q, second %q", in, once, twice)
		}
	}
}

func TestTokenSet_DiscardsOrderAndDuplicates(t *testing.T) {
	set := TokenSet("the cat and the cat")
	if len(set) != 3 {
		t.Fatalf("Expected 3 distinct tokens, got %d: %v", len(set), set)
	}
	for _, tok := range []string{"the", "cat", "and"} {
		if !set[tok] {
			t.Errorf("Expected token %q in set", tok)
		}
	}
}

func TestJaccard_Identity(t *testing.T) {
	if got := Jaccard("neurons fire signals", "neurons fire signals"); got != 1.0 {
		t.Errorf("Expected self-similarity 1.0, got %f", got)
	}
}

func TestJaccard_Symmetric(t *testing.T) {
	a := "the brain processes information"
	b := "information flows through the brain"
	if Jaccard(a, b) != Jaccard(b, a) {
		t.Errorf("Expected Jaccard(a,b) == Jaccard(b,a)")
	}
}

func TestJaccard_EmptyIsZero(t *testing.T) {
	if got := Jaccard("", "anything at all"); got != 0 {
		t.Errorf("Expected 0 for empty input, got %f", got)
	}
	if got := Jaccard("", ""); got != 0 {
		t.Errorf("Expected 0 for two empty inputs, got %f", got)
	}
}

func TestJaccard_Disjoint(t *testing.T) {
	if got := Jaccard("alpha beta", "gamma delta"); got != 0 {
		t.Errorf("Expected 0 for disjoint sets, got %f", got)
	}
}

func TestContainsNegation(t *testing.T) {
	cases := []struct {
		text string
		want bool
	}{
		{"consciousness cannot be measured", true},
		{"the model never converges", true},
		{"systems without feedback stall", true},
		{"this is a plain statement", false},
		// "knot" contains "not" as a substring but not as a token
		{"the knot was tied", false},
	}
	for _, tc := range cases {
		if got := ContainsNegation(tc.text); got != tc.want {
			t.Errorf("ContainsNegation(%q): expected %v, got %v", tc.text, tc.want, got)
		}
	}
}

func TestExtractNumbers(t *testing.T) {
	got := ExtractNumbers("reaction takes 2.5 seconds at 37 degrees, not 2 seconds")
	want := []string{"2.5", "37", "2"}
	if len(got) != len(want) {
		t.Fatalf("Expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Expected number %q at index %d, got %q", want[i], i, got[i])
		}
	}
}

func TestExtractNumbers_LiteralsStayDistinct(t *testing.T) {
	a := ExtractNumbers("the value is 2.0")
	b := ExtractNumbers("the value is 2")
	if a[0] == b[0] {
		t.Errorf("Expected %q and %q to stay distinct literals", a[0], b[0])
	}
}

func TestSharedSubjectTokens_RemovesStopWords(t *testing.T) {
	shared := SharedSubjectTokens(
		"the brain is a network",
		"the network is in the brain",
	)
	if shared["the"] || shared["is"] || shared["a"] || shared["in"] {
		t.Errorf("Expected no stop words in shared set, got %v", shared)
	}
	if !shared["brain"] || !shared["network"] {
		t.Errorf("Expected brain and network as shared subjects, got %v", shared)
	}
}

func TestSharedSubjectTokens_UnrelatedIsEmpty(t *testing.T) {
	shared := SharedSubjectTokens("the sky is blue", "the ocean is deep")
	if len(shared) != 0 {
		t.Errorf("Expected empty shared set for unrelated statements, got %v", shared)
	}
}
