package sched

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ppetrenko/veridex/internal/model"
	"github.com/ppetrenko/veridex/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCfg = model.SchedulerConfig{
	PollInterval:   time.Minute,
	BatchThreshold: 25,
	MaxAge:         6 * time.Hour,
}

func stateWithRun(runTS string, seenTheory, seenUnsure int) model.ProcessState {
	st := model.DefaultState()
	st.Validator.LastRunTS = runTS
	st.Validator.LastSeenCounts = model.SeenCounts{Theory: seenTheory, Unsure: seenUnsure}
	return st
}

func TestEvaluate_BatchThreshold(t *testing.T) {
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	st := stateWithRun("2026-02-01T11:00:00Z", 10, 10)

	// 20 + 30 = 50 current vs 20 seen: 30 new items.
	d := Evaluate(st, 20, 30, testCfg, now)
	assert.True(t, d.Trigger)
	assert.Equal(t, 30, d.NewItems)
	assert.Contains(t, d.Reason, "threshold")
}

func TestEvaluate_ThresholdIsInclusive(t *testing.T) {
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	st := stateWithRun("2026-02-01T11:00:00Z", 0, 0)

	d := Evaluate(st, 25, 0, testCfg, now)
	assert.True(t, d.Trigger, "exactly threshold new items must trigger")
	assert.Equal(t, 25, d.NewItems)
}

func TestEvaluate_NeverRan(t *testing.T) {
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)

	d := Evaluate(model.DefaultState(), 1, 0, testCfg, now)
	assert.True(t, d.Trigger)
	assert.Contains(t, d.Reason, "never run")
}

func TestEvaluate_MalformedTimestampCountsAsNeverRan(t *testing.T) {
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	st := stateWithRun("not-a-timestamp", 0, 0)

	d := Evaluate(st, 1, 0, testCfg, now)
	assert.True(t, d.Trigger)
	assert.Contains(t, d.Reason, "never run")
}

func TestEvaluate_LegacyLastValidatorRunFallback(t *testing.T) {
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	st := model.DefaultState()
	st.LastValidatorRun = "2026-02-01T11:30:00Z"

	d := Evaluate(st, 1, 0, testCfg, now)
	assert.False(t, d.Trigger, "a recent top-level run timestamp must satisfy the age rule")
}

func TestEvaluate_MaxAge(t *testing.T) {
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	st := stateWithRun("2026-02-01T05:00:00Z", 0, 0) // 7h ago

	d := Evaluate(st, 1, 0, testCfg, now)
	assert.True(t, d.Trigger)
	assert.Contains(t, d.Reason, "last_run_age")
}

func TestEvaluate_Idle(t *testing.T) {
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	st := stateWithRun("2026-02-01T11:00:00Z", 5, 5)

	d := Evaluate(st, 6, 5, testCfg, now)
	assert.False(t, d.Trigger)
	assert.Equal(t, 1, d.NewItems)
}

func TestEvaluate_ShrunkenLogsClampToZero(t *testing.T) {
	// Logs can shrink if an operator trims a file; the delta never goes
	// negative.
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	st := stateWithRun("2026-02-01T11:00:00Z", 50, 50)

	d := Evaluate(st, 10, 10, testCfg, now)
	assert.False(t, d.Trigger)
	assert.Equal(t, 0, d.NewItems)
}

// fakeRunner records invocations and returns a fixed error
type fakeRunner struct {
	calls int
	err   error
}

func (r *fakeRunner) Run(ctx context.Context) error {
	r.calls++
	return r.err
}

func seedTheoryClaims(t *testing.T, st *store.Store, n int) {
	t.Helper()
	tx, err := st.Begin()
	require.NoError(t, err)
	defer tx.Release()
	for i := 0; i < n; i++ {
		require.NoError(t, tx.AppendClaim(model.Claim{
			ID:        string(rune('a' + i)),
			Class:     model.ClassTheory,
			Statement: "statement",
			Timestamp: "2026-02-01T00:00:00Z",
		}))
	}
}

func TestWatcher_PollTriggersAndRefreshesSeenCounts(t *testing.T) {
	st := store.New(t.TempDir(), 2*time.Second)
	seedTheoryClaims(t, st, 25)

	runner := &fakeRunner{}
	w := NewWatcher(st, testCfg, runner, nil)
	w.now = func() time.Time { return time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC) }

	d, err := w.Poll(context.Background())
	require.NoError(t, err)
	assert.True(t, d.Trigger)
	assert.Equal(t, 1, runner.calls)

	seen := st.State().Validator.LastSeenCounts
	assert.Equal(t, 25, seen.Theory)
	assert.Equal(t, 0, seen.Unsure)
}

func TestWatcher_PollSwallowsRunnerFailure(t *testing.T) {
	st := store.New(t.TempDir(), 2*time.Second)
	seedTheoryClaims(t, st, 25)

	runner := &fakeRunner{err: errors.New("spawn failed")}
	w := NewWatcher(st, testCfg, runner, nil)
	w.now = func() time.Time { return time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC) }

	d, err := w.Poll(context.Background())
	require.NoError(t, err, "a failed invocation must not fail the poll")
	assert.True(t, d.Trigger)

	// The snapshot refreshes even after a failed run so the next poll does
	// not re-count the same claims.
	seen := st.State().Validator.LastSeenCounts
	assert.Equal(t, 25, seen.Theory)
}

func TestWatcher_PollIdleDoesNotInvoke(t *testing.T) {
	st := store.New(t.TempDir(), 2*time.Second)
	seedTheoryClaims(t, st, 3)

	// Mark a recent run and matching seen counts.
	tx, err := st.Begin()
	require.NoError(t, err)
	ps := tx.State()
	ps.Validator.LastRunTS = "2026-02-01T11:59:00Z"
	ps.Validator.LastSeenCounts = model.SeenCounts{Theory: 3}
	require.NoError(t, tx.WriteState(ps))
	tx.Release()

	runner := &fakeRunner{}
	w := NewWatcher(st, testCfg, runner, nil)
	w.now = func() time.Time { return time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC) }

	d, err := w.Poll(context.Background())
	require.NoError(t, err)
	assert.False(t, d.Trigger)
	assert.Equal(t, 0, runner.calls)
}
