package model

import "time"

// ISO8601 is the timestamp layout used across all store files.
const ISO8601 = "2006-01-02T15:04:05Z"

// NowUTC returns the current UTC timestamp in the store's wire format.
func NowUTC() string {
	return time.Now().UTC().Format(ISO8601)
}

// ParseTimestamp parses a store timestamp. Returns the zero time and false
// for empty or malformed input.
func ParseTimestamp(ts string) (time.Time, bool) {
	if ts == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(ISO8601, ts)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Class categorizes a collected claim
type Class string

const (
	ClassFact   Class = "FACT"   // Backed by a source URL and a direct quote
	ClassTheory Class = "THEORY" // Plausible but not directly evidenced
	ClassUnsure Class = "UNSURE" // Ambiguous, unverifiable, or degraded
	ClassTrash  Class = "TRASH"  // Noise, discarded from re-analysis
)

// Classes lists all valid claim classes
var Classes = []Class{ClassFact, ClassTheory, ClassUnsure, ClassTrash}

// Valid reports whether the class is one of the four known labels
func (c Class) Valid() bool {
	switch c {
	case ClassFact, ClassTheory, ClassUnsure, ClassTrash:
		return true
	}
	return false
}

// None is the sentinel for an absent source URL or evidence quote
const None = "NONE"

// Claim is a classified natural-language statement with provenance and
// confidence metadata. Claims are immutable once appended.
type Claim struct {
	ID            string `json:"id"`
	Class         Class  `json:"class"`
	Statement     string `json:"statement"`
	SourceURL     string `json:"source_url"`
	SourceDomain  string `json:"source_domain,omitempty"`
	EvidenceQuote string `json:"evidence_quote"`
	Confidence    int    `json:"confidence"` // always clamped to [0,100]
	Reason        string `json:"reason,omitempty"`
	Timestamp     string `json:"timestamp"`
}

// HasSource reports whether the claim carries a usable source URL
func (c Claim) HasSource() bool {
	return c.SourceURL != "" && c.SourceURL != None
}

// HasEvidence reports whether the claim carries a usable evidence quote
func (c Claim) HasEvidence() bool {
	return c.EvidenceQuote != "" && c.EvidenceQuote != None
}

// ClampConfidence clamps a confidence value to [0,100]
func ClampConfidence(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// Episode records one full collector cycle: the query, what the search
// returned, and how the model classified it. Kept for auditability.
type Episode struct {
	ID            string `json:"id"`
	Timestamp     string `json:"timestamp"`
	Query         string `json:"query"`
	ResultURL     string `json:"result_url"`
	ResultTitle   string `json:"result_title"`
	Class         Class  `json:"class"`
	Statement     string `json:"statement"`
	Update        string `json:"update"`
	SourceURL     string `json:"source_url"`
	EvidenceQuote string `json:"evidence_quote"`
	Confidence    int    `json:"confidence"`
	Reason        string `json:"reason"`
	RawOutput     string `json:"raw_output,omitempty"`
}
