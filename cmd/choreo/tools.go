package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "Show the tool registry and performance stats",
	Long: `Show every registered tool with its observed performance.

Success rate, mean latency, and execution counts accumulate within a
process; a fresh invocation shows the registry as the engine would see
it at startup.`,
	Args: cobra.NoArgs,
	RunE: runTools,
}

func runTools(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg.Logging.Level)

	registry, err := loadRegistry(cfg, logger)
	if err != nil {
		return err
	}

	descriptors := registry.Descriptors()
	if len(descriptors) == 0 {
		fmt.Println("No tools registered.")
		return nil
	}

	bold := color.New(color.Bold)
	bold.Printf("%-24s %-14s %-12s %s\n", "NAME", "SUCCESS RATE", "EXECUTIONS", "AVG LATENCY")
	for _, d := range descriptors {
		rate := "-"
		latency := "-"
		if d.Executions > 0 {
			rate = fmt.Sprintf("%.0f%%", d.SuccessRate*100)
			latency = d.AvgLatency.String()
		}
		fmt.Printf("%-24s %-14s %-12d %s\n", d.Name, rate, d.Executions, latency)
	}
	return nil
}
