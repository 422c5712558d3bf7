package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/choreohq/choreo/internal/learning"
	"github.com/choreohq/choreo/internal/policy"
	"github.com/choreohq/choreo/pkg/models"
)

var maintainInterval time.Duration

var maintainCmd = &cobra.Command{
	Use:   "maintain",
	Short: "Run background maintenance until interrupted",
	Long: `Run the maintenance loop in the foreground.

On every interval this:
  - decays all learned edges by the configured sweep rate
  - drains the pending decision queue through the auto-approval policy

The approval policy file is watched and hot-reloaded, so edits take
effect without a restart. Stop with Ctrl-C.`,
	Args: cobra.NoArgs,
	RunE: runMaintain,
}

func init() {
	maintainCmd.Flags().DurationVar(&maintainInterval, "interval", 0, "Sweep interval (defaults to the configured value)")
}

func runMaintain(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg.Logging.Level)

	interval := maintainInterval
	if interval <= 0 {
		interval = cfg.Learning.SweepInterval
	}

	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	engine, err := policy.NewEngine(cfg.Policy.Path)
	if err != nil {
		return fmt.Errorf("loading approval policy: %w", err)
	}
	if cfg.Policy.Watch {
		watcher, err := policy.Watch(engine, logger)
		if err != nil {
			logger.Warn("policy watcher unavailable", "path", cfg.Policy.Path, "error", err)
		} else {
			defer watcher.Close()
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	feedback := learning.New(db, db, logger, cfg.Learning.Reinforce, cfg.Learning.Decay)
	logger.Info("maintenance loop started", "interval", interval, "sweep_rate", cfg.Learning.SweepRate)

	go feedback.RunSweeper(ctx, interval, cfg.Learning.SweepRate)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("maintenance loop stopped")
			return nil
		case <-ticker.C:
			// Reading the queue applies any auto-approvals as a side effect.
			remaining, err := db.PendingDecisions(ctx, 0, models.Severity(""), engine)
			if err != nil {
				logger.Warn("pending queue drain failed", "error", err)
				continue
			}
			logger.Debug("pending queue drained", "remaining", len(remaining))
		}
	}
}
