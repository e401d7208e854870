package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/ppetrenko/veridex/internal/audit"
	"github.com/ppetrenko/veridex/internal/logging"
	"github.com/ppetrenko/veridex/internal/store"
	"github.com/spf13/cobra"
)

var auditTimeout time.Duration

// auditCmd re-checks FACT sources
var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Re-check stored FACT sources for link rot",
	Long: `Audit probes the source URL of every stored FACT claim. Facts are
settled and never re-enter the validation window, so a dead source is
recorded as a weak_evidence Validation with a capped confidence
recommendation instead.

Example:
  veridex audit
  veridex audit --timeout 30s`,
	RunE: runAudit,
}

func init() {
	rootCmd.AddCommand(auditCmd)

	auditCmd.Flags().DurationVar(&auditTimeout, "timeout", 0, "per-request timeout (default from config)")
}

func runAudit(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	if auditTimeout > 0 {
		cfg.Audit.Timeout = auditTimeout
	}

	log := logging.New(verbose)
	defer func() { _ = log.Sync() }()

	st := store.New(cfg.DataDir, cfg.LockTimeout)
	auditor := audit.New(st, cfg.Audit, cfg.Collector.UserAgent, cfg.Collector.HTTPProxy, cfg.Collector.HTTPSProxy, log)

	summary, err := auditor.Run(context.Background())
	if err != nil {
		return fmt.Errorf("audit failed: %w", err)
	}

	fmt.Printf("audit complete checked=%d dead=%d validations_added=%d\n",
		summary.Checked, summary.Dead, summary.Validations)
	return nil
}
