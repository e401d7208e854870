package cli

import (
	"fmt"
	"time"

	"github.com/ppetrenko/veridex/internal/model"
	"github.com/ppetrenko/veridex/internal/sched"
	"github.com/ppetrenko/veridex/internal/store"
	"github.com/spf13/cobra"
)

// statusCmd prints a read-only snapshot of the store. It deliberately takes
// no lock: the snapshot may be slightly stale but is always structurally
// valid.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show store counters, last runs, and the current trigger state",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	st := store.New(cfg.DataDir, cfg.LockTimeout)

	state := st.State()
	theory, unsure := st.ClaimCounts()
	validations := len(st.Validations())
	questions := len(st.Questions())

	fmt.Printf("data dir:        %s\n", st.Dir())
	fmt.Printf("counters:        FACT=%d THEORY=%d UNSURE=%d TRASH=%d TOTAL=%d\n",
		state.Counters[model.ClassFact],
		state.Counters[model.ClassTheory],
		state.Counters[model.ClassUnsure],
		state.Counters[model.ClassTrash],
		state.Counters[model.CounterTotal],
	)
	fmt.Printf("logs:            theory=%d unsure=%d validations=%d questions=%d\n",
		theory, unsure, validations, questions)
	fmt.Printf("last collector:  %s\n", orNever(state.LastCollectorRun))
	fmt.Printf("last validator:  %s\n", orNever(state.Validator.LastRunTS))
	fmt.Printf("last validation: %s\n", orNever(state.Validator.LastValidationTS))

	decision := sched.Evaluate(state, theory, unsure, cfg.Scheduler, time.Now().UTC())
	if decision.Trigger {
		fmt.Printf("trigger:         would fire (%s)\n", decision.Reason)
	} else {
		fmt.Printf("trigger:         %s\n", decision.Reason)
	}
	return nil
}

func orNever(ts string) string {
	if ts == "" {
		return "never"
	}
	return ts
}
