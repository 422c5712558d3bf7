// Package config handles configuration loading and management for Choreo.
// It supports XDG config paths, project-level overrides, and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/choreohq/choreo/internal/store"
)

// Config holds all configuration for Choreo.
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Policy   PolicyConfig   `mapstructure:"policy"`
	Tools    ToolsConfig    `mapstructure:"tools"`
	Learning LearningConfig `mapstructure:"learning"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// DatabaseConfig holds SQLite settings.
type DatabaseConfig struct {
	// Path is the location of the workflow database file.
	Path string `mapstructure:"path"`
}

// PolicyConfig holds approval policy settings.
type PolicyConfig struct {
	// Path is the approval policy YAML file. The file is hot-reloaded
	// while the engine runs.
	Path string `mapstructure:"path"`
	// Watch enables the filesystem watcher on the policy file.
	Watch bool `mapstructure:"watch"`
}

// ToolsConfig holds tool registry settings.
type ToolsConfig struct {
	// Path is the tool definition YAML file. Empty means the built-in
	// default registry.
	Path string `mapstructure:"path"`
}

// LearningConfig holds adaptive routing settings.
type LearningConfig struct {
	// Reinforce is the additive weight increase after a successful branch.
	Reinforce float64 `mapstructure:"reinforce"`
	// Decay is the multiplicative weight reduction after a failed branch.
	Decay float64 `mapstructure:"decay"`
	// SweepRate is the decay applied to every learned edge per sweep.
	SweepRate float64 `mapstructure:"sweep_rate"`
	// SweepInterval is how often the background sweeper runs.
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	// Level is the minimum level: debug, info, warn, or error.
	Level string `mapstructure:"level"`
}

// Load loads configuration from XDG paths, project overrides, and environment variables.
// Precedence (highest to lowest):
// 1. Environment variables (CHOREO_*)
// 2. Project config (.choreo.yaml in current directory or parent)
// 3. User config (~/.config/choreo/config.yaml)
// 4. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	userConfigDir := getUserConfigDir()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(userConfigDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	projectConfig := findProjectConfig()
	if projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err == nil {
			if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
				return nil, fmt.Errorf("merging project config: %w", err)
			}
		}
	}

	v.AutomaticEnv()
	v.SetEnvPrefix("")

	v.BindEnv("database.path", "CHOREO_DB_PATH")
	v.BindEnv("policy.path", "CHOREO_POLICY_PATH")
	v.BindEnv("tools.path", "CHOREO_TOOLS_PATH")
	v.BindEnv("logging.level", "CHOREO_LOG_LEVEL")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Database.Path = os.ExpandEnv(cfg.Database.Path)
	cfg.Policy.Path = os.ExpandEnv(cfg.Policy.Path)
	cfg.Tools.Path = os.ExpandEnv(cfg.Tools.Path)

	return cfg, nil
}

// LoadFromPath loads configuration from a specific path (for testing).
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Database.Path = os.ExpandEnv(cfg.Database.Path)
	cfg.Policy.Path = os.ExpandEnv(cfg.Policy.Path)
	cfg.Tools.Path = os.ExpandEnv(cfg.Tools.Path)

	return cfg, nil
}

// Save writes the current configuration to the user config file.
func Save(cfg *Config) error {
	userConfigDir := getUserConfigDir()
	if err := os.MkdirAll(userConfigDir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	configPath := filepath.Join(userConfigDir, "config.yaml")

	v := viper.New()
	v.SetConfigFile(configPath)

	v.Set("database.path", cfg.Database.Path)
	v.Set("policy.path", cfg.Policy.Path)
	v.Set("policy.watch", cfg.Policy.Watch)
	v.Set("tools.path", cfg.Tools.Path)
	v.Set("learning.reinforce", cfg.Learning.Reinforce)
	v.Set("learning.decay", cfg.Learning.Decay)
	v.Set("learning.sweep_rate", cfg.Learning.SweepRate)
	v.Set("learning.sweep_interval", cfg.Learning.SweepInterval.String())
	v.Set("logging.level", cfg.Logging.Level)

	return v.WriteConfig()
}

// GetUserConfigPath returns the path to the user config file.
func GetUserConfigPath() string {
	return filepath.Join(getUserConfigDir(), "config.yaml")
}

// GetProjectConfigPath returns the path to the project config file if it exists.
func GetProjectConfigPath() string {
	return findProjectConfig()
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.path", store.DefaultPath())

	v.SetDefault("policy.path", filepath.Join(getUserConfigDir(), "policy.yaml"))
	v.SetDefault("policy.watch", true)

	v.SetDefault("tools.path", "")

	v.SetDefault("learning.reinforce", 0.1)
	v.SetDefault("learning.decay", 0.1)
	v.SetDefault("learning.sweep_rate", 0.05)
	v.SetDefault("learning.sweep_interval", "1h")

	v.SetDefault("logging.level", "info")
}

// getUserConfigDir returns the XDG config directory for Choreo.
func getUserConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "choreo")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "choreo")
	}
	return filepath.Join(home, ".config", "choreo")
}

// findProjectConfig searches for .choreo.yaml in the current directory and parents.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(cwd, ".choreo.yaml")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(cwd)
		if parent == cwd {
			break
		}
		cwd = parent
	}

	return ""
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path: store.DefaultPath(),
		},
		Policy: PolicyConfig{
			Path:  filepath.Join(getUserConfigDir(), "policy.yaml"),
			Watch: true,
		},
		Learning: LearningConfig{
			Reinforce:     0.1,
			Decay:         0.1,
			SweepRate:     0.05,
			SweepInterval: time.Hour,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
