package cli

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/ppetrenko/veridex/internal/logging"
	"github.com/ppetrenko/veridex/internal/sched"
	"github.com/ppetrenko/veridex/internal/store"
	"github.com/spf13/cobra"
)

// watchCmd runs the trigger scheduler loop
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch claim counts and trigger validation runs",
	Long: `Watch polls the claim store and invokes "veridex reason" as a
subprocess when any trigger fires:
- enough new THEORY/UNSURE claims accumulated since the last check
- the validator has never run
- too much time has passed since the last run

A failed validator invocation is logged and re-evaluated on the next poll;
the loop itself keeps running until interrupted.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()

	log := logging.New(verbose)
	defer func() { _ = log.Sync() }()

	st := store.New(cfg.DataDir, cfg.LockTimeout)

	runnerArgs := []string{"reason", "--data-dir", cfg.DataDir}
	if verbose {
		runnerArgs = append(runnerArgs, "--verbose")
	}
	runner, err := sched.NewSelfRunner(runnerArgs...)
	if err != nil {
		return err
	}

	watcher := sched.NewWatcher(st, cfg.Scheduler, runner, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
