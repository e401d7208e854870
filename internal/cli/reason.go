package cli

import (
	"fmt"

	"github.com/ppetrenko/veridex/internal/logging"
	"github.com/ppetrenko/veridex/internal/reason"
	"github.com/ppetrenko/veridex/internal/store"
	"github.com/spf13/cobra"
)

var (
	windowSize   int
	maxQuestions int
)

// reasonCmd runs the validation engine once. The scheduler invokes this
// command as a subprocess; exit 0 means the run completed (possibly with
// zero Validations), non-zero means an unhandled failure.
var reasonCmd = &cobra.Command{
	Use:   "reason",
	Short: "Run one validation pass over recent claims",
	Long: `Reason loads a bounded window of the most recent THEORY and UNSURE
claims and runs the validation heuristics:
- weak-evidence check per claim (missing source or quote)
- pairwise duplicate detection (containment or token overlap)
- pairwise contradiction detection (negation, opposites, number conflicts)

All qualifying Validations are recorded; follow-up Questions are
deduplicated and capped per run.

Example:
  veridex reason
  veridex reason --window 100 --max-questions 10`,
	RunE: runReason,
}

func init() {
	rootCmd.AddCommand(reasonCmd)

	reasonCmd.Flags().IntVar(&windowSize, "window", 0, "claims per window (default from config)")
	reasonCmd.Flags().IntVar(&maxQuestions, "max-questions", 0, "question quota per run (default from config)")
}

func runReason(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	if windowSize > 0 {
		cfg.Validator.WindowSize = windowSize
	}
	if maxQuestions > 0 {
		cfg.Validator.MaxQuestions = maxQuestions
	}

	log := logging.New(verbose)
	defer func() { _ = log.Sync() }()

	st := store.New(cfg.DataDir, cfg.LockTimeout)
	engine := reason.NewEngine(st, cfg.Validator, log)

	summary, err := engine.Run()
	if err != nil {
		return fmt.Errorf("validation run failed: %w", err)
	}

	fmt.Printf("run complete processed=%d validations_added=%d questions_added=%d\n",
		summary.Processed, summary.Validations, summary.Questions)
	return nil
}
