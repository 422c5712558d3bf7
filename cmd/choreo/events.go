package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	eventsType  string
	eventsLimit int
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Show recent engine events",
	Long: `Show the newest engine events, most recent first.

Events are written best-effort by the engine as runs, decisions, and
feedback writes happen. Filter with --type (workflow, decision, feedback).`,
	Args: cobra.NoArgs,
	RunE: runEvents,
}

func init() {
	eventsCmd.Flags().StringVar(&eventsType, "type", "", "Filter by event type")
	eventsCmd.Flags().IntVar(&eventsLimit, "limit", 50, "Maximum events to list")
}

func runEvents(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	events, err := db.RecentEvents(cmd.Context(), eventsType, eventsLimit)
	if err != nil {
		return fmt.Errorf("listing events: %w", err)
	}

	if len(events) == 0 {
		fmt.Println("No events recorded.")
		return nil
	}

	cyan := color.New(color.FgCyan)
	for _, e := range events {
		fmt.Printf("%s  ", e.Timestamp.Format("2006-01-02 15:04:05"))
		cyan.Printf("%-10s", e.Type)
		fmt.Printf("  %s\n", e.Message)
	}
	return nil
}
