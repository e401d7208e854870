package model

// ProcessState is the single mutable record in the store. It is read and
// rewritten under the store lock by whichever component holds it; there is
// never more than one writer in flight.
type ProcessState struct {
	LastCollectorRun string         `json:"last_collector_run"`
	LastValidatorRun string         `json:"last_validator_run"`
	QueryCursor      int            `json:"query_cursor"`
	Counters         map[Class]int  `json:"counters"`
	Validator        ValidatorState `json:"validator"`
}

// ValidatorState tracks the validation engine's progress, maintained partly
// by the engine itself and partly by the trigger scheduler.
type ValidatorState struct {
	LastRunTS           string          `json:"last_run_ts"`
	LastProcessedCounts ProcessedCounts `json:"last_processed_counts"`
	// LastValidationTS only advances when a run produced at least one
	// Validation.
	LastValidationTS string     `json:"last_validation_ts"`
	LastSeenCounts   SeenCounts `json:"last_seen_counts"`
}

// ProcessedCounts splits one engine run's window by class
type ProcessedCounts struct {
	Theory int `json:"theory"`
	Unsure int `json:"unsure"`
	Total  int `json:"total"`
}

// SeenCounts is the scheduler's snapshot of log sizes at its last trigger
// decision; the delta against current sizes drives the batch threshold.
type SeenCounts struct {
	Theory int `json:"theory"`
	Unsure int `json:"unsure"`
}

// CounterTotal is the synthetic counter key tracking all claims combined
const CounterTotal Class = "TOTAL"

// DefaultState returns the state every reader substitutes when state.json
// is missing or unparseable.
func DefaultState() ProcessState {
	return ProcessState{
		Counters: map[Class]int{
			ClassFact:    0,
			ClassTheory:  0,
			ClassUnsure:  0,
			ClassTrash:   0,
			CounterTotal: 0,
		},
	}
}

// Normalize fills in nil maps so callers can increment counters without
// nil checks. Returns the same state for chaining.
func (s ProcessState) Normalize() ProcessState {
	if s.Counters == nil {
		s.Counters = DefaultState().Counters
	}
	return s
}

// CountClaim bumps the per-class and total counters
func (s *ProcessState) CountClaim(class Class) {
	if s.Counters == nil {
		s.Counters = DefaultState().Counters
	}
	s.Counters[class]++
	s.Counters[CounterTotal]++
}
