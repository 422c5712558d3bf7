package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/choreohq/choreo/internal/config"
	"github.com/choreohq/choreo/internal/store"
)

var logLevel string

var rootCmd = &cobra.Command{
	Use:   "choreo",
	Short: "Adaptive Workflow Choreography Engine",
	Long: `Choreo executes agent workflows as directed graphs with probabilistic
branching. Each node dispatches work to an automation tool through a tiered
fallback chain, every dispatch is recorded as an auditable decision, and
branch outcomes feed back into the edge weights so routing adapts over time.

Core capabilities:
- Probabilistic fan-out: every outgoing edge fires independently
- Tiered tool dispatch: recommendation, registry order, similarity search
- Decision records with severity-based auto-approval policy
- Adaptive routing: successful branches reinforce, failures decay
- Fail-soft execution: store outages degrade, runs always complete`,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, or error (overrides config)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(decisionsCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(toolsCmd)
	rootCmd.AddCommand(decayCmd)
	rootCmd.AddCommand(maintainCmd)
	rootCmd.AddCommand(eventsCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig loads the effective configuration, applying the --log-level
// override.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	return cfg, nil
}

// newLogger builds the CLI logger: colored tint output on a terminal,
// plain text otherwise.
func newLogger(level string) *slog.Logger {
	handler := tint.NewHandler(os.Stderr, &tint.Options{
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
		TimeFormat: time.Kitchen,
		Level:      parseLevel(level),
	})
	return slog.New(handler)
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// openStore opens and migrates the workflow database.
func openStore(cfg *config.Config) (*store.DB, error) {
	db, err := store.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("opening store at %s: %w", cfg.Database.Path, err)
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating store: %w", err)
	}
	return db, nil
}
