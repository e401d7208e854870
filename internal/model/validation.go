package model

// EventType classifies the outcome of analyzing one or two claims
type EventType string

const (
	EventWeakEvidence  EventType = "weak_evidence" // Claim lacks source or quote
	EventDuplicate     EventType = "duplicate"     // Two claims are near-identical
	EventContradiction EventType = "contradiction" // Two claims conflict
)

// Validation records the outcome of analyzing one or two claims.
// Append-only; never mutated or deleted. Many Validations may reference
// the same claim.
type Validation struct {
	ID              string    `json:"id"`
	EventType       EventType `json:"event_type"`
	RelatedClaimIDs []string  `json:"related_claim_ids"`
	Rationale       string    `json:"rationale"`
	ConfidenceDelta int       `json:"confidence_delta"`
	// RecommendedConfidence maps claim id to the confidence this single
	// Validation recommends. Overlapping recommendations from different
	// Validations are not reconciled here.
	RecommendedConfidence map[string]int `json:"recommended_confidence"`
	CreatedAt             string         `json:"created_at"`
}

// Question is a follow-up prompt for a human or downstream agent
type Question struct {
	ID              string   `json:"id"`
	QuestionText    string   `json:"question_text"`
	RelatedClaimIDs []string `json:"related_claim_ids"`
	Priority        int      `json:"priority"` // 1 (low) to 5 (urgent)
	Reason          string   `json:"reason"`
	Status          string   `json:"status"`
	CreatedAt       string   `json:"created_at"`
}

// QuestionStatusOpen is the initial status of every generated Question
const QuestionStatusOpen = "open"

// ClampPriority clamps a question priority to [1,5]
func ClampPriority(p int) int {
	if p < 1 {
		return 1
	}
	if p > 5 {
		return 5
	}
	return p
}
