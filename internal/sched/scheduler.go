// Package sched decides when the validation engine should run and drives
// it as an isolated subprocess. The decision is a pure function of the
// process state and current log sizes; the watch loop adds polling, locking
// and failure tolerance around it.
package sched

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/ppetrenko/veridex/internal/model"
	"github.com/ppetrenko/veridex/internal/store"
	"go.uber.org/zap"
)

// Decision captures one trigger evaluation
type Decision struct {
	Trigger  bool
	Reason   string
	NewItems int
}

// Evaluate applies the trigger rules: batch threshold first, then
// never-ran, then max age.
func Evaluate(st model.ProcessState, theory, unsure int, cfg model.SchedulerConfig, now time.Time) Decision {
	seen := st.Validator.LastSeenCounts
	prevTotal := seen.Theory + seen.Unsure
	currTotal := theory + unsure
	newItems := currTotal - prevTotal
	if newItems < 0 {
		newItems = 0
	}

	if newItems >= cfg.BatchThreshold {
		return Decision{
			Trigger:  true,
			Reason:   fmt.Sprintf("new_items=%d threshold=%d", newItems, cfg.BatchThreshold),
			NewItems: newItems,
		}
	}

	lastRunTS := st.Validator.LastRunTS
	if lastRunTS == "" {
		lastRunTS = st.LastValidatorRun
	}
	lastRun, ok := model.ParseTimestamp(lastRunTS)
	if !ok {
		return Decision{Trigger: true, Reason: "validator has never run", NewItems: newItems}
	}

	age := now.Sub(lastRun)
	if age >= cfg.MaxAge {
		return Decision{
			Trigger:  true,
			Reason:   fmt.Sprintf("last_run_age=%s >= %s", age.Truncate(time.Second), cfg.MaxAge),
			NewItems: newItems,
		}
	}

	return Decision{
		Reason:   fmt.Sprintf("idle new_items=%d age=%s", newItems, age.Truncate(time.Second)),
		NewItems: newItems,
	}
}

// Runner invokes one validation engine run. The error, if any, carries the
// subprocess exit status.
type Runner interface {
	Run(ctx context.Context) error
}

// SubprocessRunner spawns the engine as a child process and waits for it,
// so a long-running invocation completes before the next poll can observe
// its results.
type SubprocessRunner struct {
	bin  string
	args []string
}

// NewSelfRunner builds a runner that re-invokes the current binary with the
// given arguments (typically "reason" plus data-dir flags).
func NewSelfRunner(args ...string) (*SubprocessRunner, error) {
	bin, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("resolve executable: %w", err)
	}
	return &SubprocessRunner{bin: bin, args: args}, nil
}

// Run executes the subprocess synchronously, passing through its output
func (r *SubprocessRunner) Run(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, r.bin, r.args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// Watcher is the scheduler loop
type Watcher struct {
	store  *store.Store
	cfg    model.SchedulerConfig
	runner Runner
	log    *zap.Logger
	now    func() time.Time
}

// NewWatcher creates a watcher over the given store and runner
func NewWatcher(st *store.Store, cfg model.SchedulerConfig, runner Runner, log *zap.Logger) *Watcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Watcher{store: st, cfg: cfg, runner: runner, log: log, now: time.Now}
}

// Poll performs one trigger evaluation and, when it fires, one engine
// invocation. A failed invocation is logged and swallowed; the next poll
// re-evaluates thresholds from current on-disk counts. Only lock timeouts
// and store write failures propagate.
func (w *Watcher) Poll(ctx context.Context) (Decision, error) {
	st, theory, unsure, err := w.readStateAndCounts()
	if err != nil {
		return Decision{}, err
	}

	decision := Evaluate(st, theory, unsure, w.cfg, w.now().UTC())
	if !decision.Trigger {
		w.log.Debug("no trigger", zap.String("reason", decision.Reason))
		return decision, nil
	}

	w.log.Info("triggering validator", zap.String("reason", decision.Reason))
	if err := w.runner.Run(ctx); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			w.log.Warn("validator exited non-zero", zap.Int("code", exitErr.ExitCode()))
		} else {
			w.log.Warn("validator invocation failed", zap.Error(err))
		}
	}

	// Refresh the snapshot regardless of the run's outcome so partial
	// progress is not re-counted on the next poll.
	if err := w.updateLastSeenCounts(); err != nil {
		return decision, err
	}
	return decision, nil
}

// Run polls until the context is cancelled
func (w *Watcher) Run(ctx context.Context) error {
	w.log.Info("scheduler started",
		zap.Duration("poll_interval", w.cfg.PollInterval),
		zap.Int("batch_threshold", w.cfg.BatchThreshold),
		zap.Duration("max_age", w.cfg.MaxAge),
	)
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		if _, err := w.Poll(ctx); err != nil {
			// Lock timeout or store failure: log and keep polling. The
			// store itself is untouched when these surface.
			w.log.Error("poll failed", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (w *Watcher) readStateAndCounts() (model.ProcessState, int, int, error) {
	tx, err := w.store.Begin()
	if err != nil {
		return model.ProcessState{}, 0, 0, err
	}
	defer tx.Release()
	st := tx.State()
	theory, unsure := tx.ClaimCounts()
	return st, theory, unsure, nil
}

func (w *Watcher) updateLastSeenCounts() error {
	tx, err := w.store.Begin()
	if err != nil {
		return err
	}
	defer tx.Release()
	st := tx.State()
	theory, unsure := tx.ClaimCounts()
	st.Validator.LastSeenCounts = model.SeenCounts{Theory: theory, Unsure: unsure}
	return tx.WriteState(st)
}
