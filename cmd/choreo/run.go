package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/choreohq/choreo/internal/config"
	"github.com/choreohq/choreo/internal/learning"
	"github.com/choreohq/choreo/internal/orchestrator"
	"github.com/choreohq/choreo/internal/tool"
)

var runSweep bool

var runCmd = &cobra.Command{
	Use:   "run [workflow-id]",
	Short: "Execute a workflow",
	Long: `Execute a workflow from the store.

The workflow id defaults to "workflow_demo". If the workflow is missing or
the store is unreachable, the built-in demo graph runs instead so the
pipeline always has something to execute.

Every node execution creates a decision record and an execution trace.
Branch outcomes adjust the edge weights: a successful branch reinforces
its edge, a failed branch decays it.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWorkflow,
}

func init() {
	runCmd.Flags().BoolVar(&runSweep, "sweep", false, "Decay all learned edges before the run")
}

func runWorkflow(cmd *cobra.Command, args []string) error {
	workflowID := "workflow_demo"
	if len(args) > 0 {
		workflowID = args[0]
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg.Logging.Level)

	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	registry, err := loadRegistry(cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	feedback := learning.New(db, db, logger, cfg.Learning.Reinforce, cfg.Learning.Decay)
	if runSweep {
		if err := feedback.Sweep(ctx, cfg.Learning.SweepRate); err != nil {
			logger.Warn("learned edge sweep failed", "error", err)
		}
	}

	o, err := orchestrator.New(db, registry,
		orchestrator.WithLogger(logger),
		orchestrator.WithFeedback(feedback),
	)
	if err != nil {
		return err
	}

	res, err := o.Run(ctx, workflowID)
	if err != nil {
		return fmt.Errorf("running workflow %s: %w", workflowID, err)
	}

	printRunSummary(res)
	return nil
}

func printRunSummary(res *orchestrator.RunResult) {
	bold := color.New(color.Bold)
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)
	yellow := color.New(color.FgYellow)

	fmt.Println()
	bold.Printf("Run %s (%s)\n", res.RunID, res.WorkflowID)
	fmt.Printf("  nodes executed: %d\n", res.NodesExecuted)
	green.Printf("  succeeded:      %d\n", res.Succeeded)
	if res.Failed > 0 {
		red.Printf("  failed:         %d\n", res.Failed)
	} else {
		fmt.Printf("  failed:         %d\n", res.Failed)
	}
	if res.SkippedEdges > 0 {
		yellow.Printf("  skipped edges:  %d\n", res.SkippedEdges)
	}
	fmt.Printf("  duration:       %s\n", res.Duration.Round(time.Millisecond))
}

// loadRegistry builds the tool registry from the configured definitions
// file, falling back to the built-in defaults when none is set.
func loadRegistry(cfg *config.Config, logger *slog.Logger) (*tool.Registry, error) {
	if cfg.Tools.Path == "" {
		return tool.DefaultRegistry(), nil
	}
	registry, err := tool.LoadRegistry(cfg.Tools.Path, logger)
	if err != nil {
		return nil, fmt.Errorf("loading tool definitions from %s: %w", cfg.Tools.Path, err)
	}
	return registry, nil
}
