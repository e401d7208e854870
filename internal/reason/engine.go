package reason

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ppetrenko/veridex/internal/ident"
	"github.com/ppetrenko/veridex/internal/model"
	"github.com/ppetrenko/veridex/internal/store"
	"github.com/ppetrenko/veridex/internal/textutil"
	"go.uber.org/zap"
)

// WeakEvidenceCap is the ceiling applied to a claim's confidence when its
// source or evidence is missing.
const WeakEvidenceCap = 60

const (
	deltaDuplicate     = -10
	deltaContradiction = -20
)

// Engine runs one validation pass over the store
type Engine struct {
	store        *store.Store
	windowSize   int
	maxQuestions int
	log          *zap.Logger
	now          func() string
}

// NewEngine creates an engine with the given window and question bounds
func NewEngine(st *store.Store, cfg model.ValidatorConfig, log *zap.Logger) *Engine {
	windowSize := cfg.WindowSize
	if windowSize <= 0 {
		windowSize = 50
	}
	maxQuestions := cfg.MaxQuestions
	if maxQuestions <= 0 {
		maxQuestions = 5
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		store:        st,
		windowSize:   windowSize,
		maxQuestions: maxQuestions,
		log:          log,
		now:          model.NowUTC,
	}
}

// Summary reports what one run processed and produced
type Summary struct {
	Processed   int `json:"processed"`
	Validations int `json:"validations_added"`
	Questions   int `json:"questions_added"`
}

// Run loads the window, analyzes it, and persists the outcome under the
// store lock. Lock timeout and unrecoverable store writes are the only
// errors; malformed records never abort a run.
func (e *Engine) Run() (Summary, error) {
	items := e.LoadWindow()
	validations, questions := Analyze(items, e.maxQuestions, e.now)

	tx, err := e.store.Begin()
	if err != nil {
		return Summary{}, err
	}
	defer tx.Release()

	if err := tx.AppendValidations(validations); err != nil {
		return Summary{}, fmt.Errorf("append validations: %w", err)
	}
	if err := tx.AppendQuestions(questions); err != nil {
		return Summary{}, fmt.Errorf("append questions: %w", err)
	}

	now := e.now()
	st := tx.State()
	st.LastValidatorRun = now
	st.Validator.LastRunTS = now
	st.Validator.LastProcessedCounts = countByClass(items)
	if len(validations) > 0 {
		st.Validator.LastValidationTS = now
	}
	if err := tx.WriteState(st); err != nil {
		return Summary{}, fmt.Errorf("update state: %w", err)
	}

	summary := Summary{
		Processed:   len(items),
		Validations: len(validations),
		Questions:   len(questions),
	}
	e.log.Info("validation run complete",
		zap.Int("processed", summary.Processed),
		zap.Int("validations", summary.Validations),
		zap.Int("questions", summary.Questions),
	)
	return summary, nil
}

// LoadWindow reads the most recent windowSize THEORY and UNSURE claims,
// time-ordered. FACT claims are settled and TRASH is discarded, so neither
// is re-analyzed. The read is deliberately unlocked.
func (e *Engine) LoadWindow() []model.Claim {
	var combined []model.Claim
	for _, c := range e.store.Claims(store.CategoryTheory) {
		combined = append(combined, normalizeClaim(c, model.ClassTheory, e.now))
	}
	for _, c := range e.store.Claims(store.CategoryUnsure) {
		combined = append(combined, normalizeClaim(c, model.ClassUnsure, e.now))
	}
	sort.SliceStable(combined, func(i, j int) bool {
		return combined[i].Timestamp < combined[j].Timestamp
	})
	if len(combined) > e.windowSize {
		combined = combined[len(combined)-e.windowSize:]
	}
	return combined
}

// normalizeClaim substitutes safe defaults for missing fields so one
// malformed record cannot abort a run.
func normalizeClaim(c model.Claim, defaultClass model.Class, now func() string) model.Claim {
	if !c.Class.Valid() {
		c.Class = defaultClass
	}
	if c.SourceURL == "" {
		c.SourceURL = model.None
	}
	if c.EvidenceQuote == "" {
		c.EvidenceQuote = model.None
	}
	if c.Confidence == 0 {
		c.Confidence = 50
	}
	c.Confidence = model.ClampConfidence(c.Confidence)
	if c.Timestamp == "" {
		c.Timestamp = now()
	}
	if c.ID == "" {
		c.ID = ident.MakeID(string(defaultClass), c.Statement, c.Timestamp)
	}
	return c
}

// Analyze runs the evidence and pairwise checks over a window. All
// qualifying Validations are recorded; only Question volume is capped. The
// quota check inside the pairwise loop skips further Questions without
// stopping the loops, so Validation output never depends on the quota.
func Analyze(items []model.Claim, maxQuestions int, now func() string) ([]model.Validation, []model.Question) {
	var validations []model.Validation
	var questions []model.Question

	// Per-claim evidence check.
	for _, item := range items {
		if item.HasSource() && item.HasEvidence() {
			continue
		}
		validations = append(validations, buildValidation(
			model.EventWeakEvidence, item, nil,
			fmt.Sprintf("Source or evidence missing; cap confidence to %d.", WeakEvidenceCap),
			0, now,
		))
		if len(questions) < maxQuestions {
			questions = append(questions, buildQuestion(
				fmt.Sprintf("What direct source and quote can verify: %s?", truncate(item.Statement, 120)),
				[]string{item.ID}, 3, "Claim lacks source/evidence.", now,
			))
		}
	}

	// Pairwise checks in ascending (i, j) order. Ordering only affects
	// which Questions survive the quota cutoff.
	for i := 0; i < len(items); i++ {
		for j := i + 1; j < len(items); j++ {
			a, b := items[i], items[j]

			if IsDuplicate(a.Statement, b.Statement) {
				validations = append(validations, buildValidation(
					model.EventDuplicate, a, &b,
					"Near-duplicate statements (high overlap/containment).",
					deltaDuplicate, now,
				))
				if len(questions) < maxQuestions {
					questions = append(questions, buildQuestion(
						"Are these two statements truly distinct claims or duplicates?",
						[]string{a.ID, b.ID}, 2, "Duplicate detection triggered.", now,
					))
				}
			}

			if IsContradiction(a.Statement, b.Statement) {
				validations = append(validations, buildValidation(
					model.EventContradiction, a, &b,
					"Possible contradiction by negation/opposite/number conflict heuristics.",
					deltaContradiction, now,
				))
				if len(questions) < maxQuestions {
					questions = append(questions, buildQuestion(
						"Which of these conflicting claims is better supported by direct evidence?",
						[]string{a.ID, b.ID}, 5, "Contradiction detected.", now,
					))
				}
			}
		}
	}

	return validations, dedupeQuestions(questions, maxQuestions)
}

// ConfidenceCap returns the claim's confidence after the weak-evidence
// ceiling. Every Validation's recommendation starts from this capped base,
// never from another Validation's output.
func ConfidenceCap(c model.Claim) int {
	capped := c.Confidence
	if !c.HasSource() || !c.HasEvidence() {
		if capped > WeakEvidenceCap {
			capped = WeakEvidenceCap
		}
	}
	return capped
}

func buildValidation(event model.EventType, a model.Claim, b *model.Claim, rationale string, delta int, now func() string) model.Validation {
	related := []string{a.ID}
	recommended := map[string]int{a.ID: recommend(a, delta)}
	if b != nil {
		related = append(related, b.ID)
		recommended[b.ID] = recommend(*b, delta)
	}
	ts := now()
	idParts := append([]string{string(event)}, related...)
	idParts = append(idParts, ts)
	return model.Validation{
		ID:                    ident.MakeID(idParts...),
		EventType:             event,
		RelatedClaimIDs:       related,
		Rationale:             rationale,
		ConfidenceDelta:       delta,
		RecommendedConfidence: recommended,
		CreatedAt:             ts,
	}
}

func recommend(c model.Claim, delta int) int {
	rec := ConfidenceCap(c) + delta
	if rec < 0 {
		rec = 0
	}
	return rec
}

func buildQuestion(text string, related []string, priority int, reason string, now func() string) model.Question {
	ts := now()
	return model.Question{
		ID:              ident.MakeID("question", text, strings.Join(related, "|"), ts),
		QuestionText:    text,
		RelatedClaimIDs: related,
		Priority:        model.ClampPriority(priority),
		Reason:          reason,
		Status:          model.QuestionStatusOpen,
		CreatedAt:       ts,
	}
}

// dedupeQuestions drops repeats of (normalized text, sorted related ids),
// preserving first-seen order, then truncates to the quota. The boundary is
// one run: questions persisted by earlier runs are never consulted.
func dedupeQuestions(questions []model.Question, maxQuestions int) []model.Question {
	seen := make(map[string]bool)
	var deduped []model.Question
	for _, q := range questions {
		ids := append([]string(nil), q.RelatedClaimIDs...)
		sort.Strings(ids)
		key := textutil.Normalize(q.QuestionText) + "|" + strings.Join(ids, ",")
		if seen[key] {
			continue
		}
		seen[key] = true
		deduped = append(deduped, q)
		if len(deduped) >= maxQuestions {
			break
		}
	}
	return deduped
}

func countByClass(items []model.Claim) model.ProcessedCounts {
	counts := model.ProcessedCounts{Total: len(items)}
	for _, item := range items {
		switch item.Class {
		case model.ClassTheory:
			counts.Theory++
		case model.ClassUnsure:
			counts.Unsure++
		}
	}
	return counts
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
