package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/ppetrenko/veridex/internal/collect"
	"github.com/ppetrenko/veridex/internal/llm"
	"github.com/ppetrenko/veridex/internal/logging"
	"github.com/ppetrenko/veridex/internal/store"
	"github.com/spf13/cobra"
)

var (
	collectInterval time.Duration
	collectCycles   int
	llmProvider     string
	llmModel        string
)

// collectCmd runs the collector loop
var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Continuously collect and classify claims",
	Long: `Collect rotates through the configured seed queries. Each cycle it
asks the search endpoint for a lead, reduces the top result page to text,
has the classifier model produce a structured verdict, and appends the
resulting claim to the store.

An unreachable search endpoint or model never fails a cycle: the collector
records a degraded UNSURE claim and moves on.

Example:
  veridex collect
  veridex collect --cycles 10 --interval 30s
  veridex collect --llm-provider openai --llm-model gpt-4o-mini`,
	RunE: runCollect,
}

func init() {
	rootCmd.AddCommand(collectCmd)

	collectCmd.Flags().DurationVar(&collectInterval, "interval", 0, "delay between cycles (default from config)")
	collectCmd.Flags().IntVar(&collectCycles, "cycles", 0, "stop after this many cycles (0 = run forever)")
	collectCmd.Flags().StringVar(&llmProvider, "llm-provider", "", "classifier provider (openai, local)")
	collectCmd.Flags().StringVar(&llmModel, "llm-model", "", "classifier model name")
}

func runCollect(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	if collectInterval > 0 {
		cfg.Collector.Interval = collectInterval
	}
	if collectCycles > 0 {
		cfg.Collector.MaxCycles = collectCycles
	}
	if llmProvider != "" {
		cfg.LLM.Provider = llmProvider
	}
	if llmModel != "" {
		cfg.LLM.Model = llmModel
	}

	log := logging.New(verbose)
	defer func() { _ = log.Sync() }()

	classifier, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM))
	if err != nil {
		return fmt.Errorf("configure classifier: %w", err)
	}

	st := store.New(cfg.DataDir, cfg.LockTimeout)
	if err := st.EnsureDir(); err != nil {
		return err
	}

	collector := collect.New(st, cfg.Collector, classifier, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := collector.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
