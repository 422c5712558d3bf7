package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/choreohq/choreo/internal/learning"
)

var decayRate float64

var decayCmd = &cobra.Command{
	Use:   "decay",
	Short: "Decay all learned edges",
	Long: `Apply a multiplicative decay to every learned edge in the store.

Each learned probability becomes probability * (1 - rate). Definition
edges are never touched. Run this periodically so stale routing
knowledge fades unless traffic keeps reinforcing it.`,
	Args: cobra.NoArgs,
	RunE: runDecay,
}

func init() {
	decayCmd.Flags().Float64Var(&decayRate, "rate", -1, "Decay rate in [0, 1] (defaults to the configured sweep rate)")
}

func runDecay(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg.Logging.Level)

	rate := decayRate
	if rate < 0 {
		rate = cfg.Learning.SweepRate
	}

	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	feedback := learning.New(db, db, logger, cfg.Learning.Reinforce, cfg.Learning.Decay)
	if err := feedback.Sweep(cmd.Context(), rate); err != nil {
		return fmt.Errorf("decaying learned edges: %w", err)
	}

	color.New(color.FgGreen).Printf("Decayed all learned edges by %.0f%%\n", rate*100)
	return nil
}
