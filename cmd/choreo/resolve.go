package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/choreohq/choreo/pkg/models"
)

var (
	resolveChoice string
	resolveStatus string
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <decision-id>",
	Short: "Resolve a pending decision",
	Long: `Manually resolve a pending decision.

The transition only applies while the decision is still pending; a
decision already resolved elsewhere is left untouched and reported.
The resolving actor is recorded as "admin".`,
	Args: cobra.ExactArgs(1),
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().StringVar(&resolveChoice, "choice", "", "Tool choice to record (defaults to the recommendation)")
	resolveCmd.Flags().StringVar(&resolveStatus, "status", "approved", "Terminal status: approved or rejected")
}

func runResolve(cmd *cobra.Command, args []string) error {
	decisionID := args[0]

	status := models.DecisionStatus(resolveStatus)
	if status != models.DecisionApproved && status != models.DecisionRejected {
		return fmt.Errorf("invalid status %q: must be approved or rejected", resolveStatus)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := cmd.Context()

	choice := resolveChoice
	if choice == "" {
		d, err := db.GetDecision(ctx, decisionID)
		if err != nil {
			return fmt.Errorf("loading decision %s: %w", decisionID, err)
		}
		choice = d.Recommendation
	}

	applied, err := db.ResolveDecision(ctx, decisionID, choice, status, models.ActorAdmin)
	if err != nil {
		return fmt.Errorf("resolving decision %s: %w", decisionID, err)
	}
	if !applied {
		color.New(color.FgYellow).Printf("Decision %s was already resolved; no change made.\n", decisionID)
		return nil
	}

	color.New(color.FgGreen).Printf("Decision %s %s (choice: %s)\n", decisionID, status, choice)
	return nil
}
