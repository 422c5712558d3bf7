package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/choreohq/choreo/internal/policy"
	"github.com/choreohq/choreo/pkg/models"
)

var (
	decisionsLimit    int
	decisionsSeverity string
)

var decisionsCmd = &cobra.Command{
	Use:   "decisions",
	Short: "List pending decisions",
	Long: `List the pending decision queue.

Reading the queue applies the auto-approval policy: decisions whose
severity the policy allows are approved on the spot and dropped from the
listing. What remains needs a human, resolved with 'choreo resolve'.`,
	Args: cobra.NoArgs,
	RunE: runDecisions,
}

func init() {
	decisionsCmd.Flags().IntVar(&decisionsLimit, "limit", 50, "Maximum decisions to list")
	decisionsCmd.Flags().StringVar(&decisionsSeverity, "severity", "", "Filter by severity: low, medium, or high")
}

func runDecisions(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg.Logging.Level)

	severity := models.Severity(decisionsSeverity)
	if decisionsSeverity != "" && !severity.Valid() {
		return fmt.Errorf("invalid severity %q", decisionsSeverity)
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

	pending, err := db.PendingDecisions(cmd.Context(), decisionsLimit, severity, engine)
	if err != nil {
		return fmt.Errorf("listing decisions: %w", err)
	}

	if len(pending) == 0 {
		fmt.Println("No pending decisions.")
		return nil
	}

	logger.Debug("pending decisions loaded", "count", len(pending))
	bold := color.New(color.Bold)
	bold.Printf("%-38s %-12s %-10s %-20s %s\n", "ID", "AGENT", "SEVERITY", "RECOMMENDATION", "CREATED")
	for _, d := range pending {
		severityColor(d.Severity).Printf("%-38s %-12s %-10s %-20s %s\n",
			d.ID, d.Agent, d.Severity, d.Recommendation,
			d.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}

func severityColor(s models.Severity) *color.Color {
	switch s {
	case models.SeverityHigh:
		return color.New(color.FgRed)
	case models.SeverityMedium:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgWhite)
	}
}
