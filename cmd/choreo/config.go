package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/choreohq/choreo/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Manage configuration",
	Long: `View or modify Choreo configuration.

Without arguments, displays current configuration.
With one argument (key), displays the value for that key.
With two arguments (key value), sets the configuration value.

Configuration is stored at ~/.config/choreo/config.yaml
Project-specific overrides can be placed in .choreo.yaml`,
	Args: cobra.MaximumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}

		switch len(args) {
		case 0:
			displayAllConfig(cfg)
		case 1:
			displayConfigKey(cfg, args[0])
		default:
			setConfigKey(cfg, args[0], args[1])
		}
	},
}

func displayAllConfig(cfg *config.Config) {
	fmt.Printf("database.path: %s\n", cfg.Database.Path)
	fmt.Printf("policy.path: %s\n", cfg.Policy.Path)
	fmt.Printf("policy.watch: %t\n", cfg.Policy.Watch)
	fmt.Printf("tools.path: %s\n", displayPath(cfg.Tools.Path))
	fmt.Printf("learning.reinforce: %g\n", cfg.Learning.Reinforce)
	fmt.Printf("learning.decay: %g\n", cfg.Learning.Decay)
	fmt.Printf("learning.sweep_rate: %g\n", cfg.Learning.SweepRate)
	fmt.Printf("learning.sweep_interval: %s\n", cfg.Learning.SweepInterval)
	fmt.Printf("logging.level: %s\n", cfg.Logging.Level)
}

func displayPath(p string) string {
	if p == "" {
		return "(built-in defaults)"
	}
	return p
}

func displayConfigKey(cfg *config.Config, key string) {
	value, err := getConfigValue(cfg, key)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(value)
}

func setConfigKey(cfg *config.Config, key, value string) {
	if err := setConfigValue(cfg, key, value); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := config.Save(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving config: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Set %s = %s\n", key, value)
}

func getConfigValue(cfg *config.Config, key string) (string, error) {
	switch key {
	case "database.path":
		return cfg.Database.Path, nil
	case "policy.path":
		return cfg.Policy.Path, nil
	case "policy.watch":
		return strconv.FormatBool(cfg.Policy.Watch), nil
	case "tools.path":
		return cfg.Tools.Path, nil
	case "learning.reinforce":
		return strconv.FormatFloat(cfg.Learning.Reinforce, 'g', -1, 64), nil
	case "learning.decay":
		return strconv.FormatFloat(cfg.Learning.Decay, 'g', -1, 64), nil
	case "learning.sweep_rate":
		return strconv.FormatFloat(cfg.Learning.SweepRate, 'g', -1, 64), nil
	case "learning.sweep_interval":
		return cfg.Learning.SweepInterval.String(), nil
	case "logging.level":
		return cfg.Logging.Level, nil
	default:
		return "", fmt.Errorf("unknown configuration key: %s", key)
	}
}

func setConfigValue(cfg *config.Config, key, value string) error {
	switch key {
	case "database.path":
		cfg.Database.Path = value
	case "policy.path":
		cfg.Policy.Path = value
	case "policy.watch":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean for %s: %s", key, value)
		}
		cfg.Policy.Watch = b
	case "tools.path":
		cfg.Tools.Path = value
	case "learning.reinforce", "learning.decay", "learning.sweep_rate":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f < 0 || f > 1 {
			return fmt.Errorf("invalid rate for %s: %s (must be in [0, 1])", key, value)
		}
		switch key {
		case "learning.reinforce":
			cfg.Learning.Reinforce = f
		case "learning.decay":
			cfg.Learning.Decay = f
		case "learning.sweep_rate":
			cfg.Learning.SweepRate = f
		}
	case "learning.sweep_interval":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration for %s: %s", key, value)
		}
		cfg.Learning.SweepInterval = d
	case "logging.level":
		switch value {
		case "debug", "info", "warn", "error":
			cfg.Logging.Level = value
		default:
			return fmt.Errorf("invalid log level: %s", value)
		}
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}
	return nil
}
