package main

import (
	"testing"
	"time"

	"github.com/choreohq/choreo/internal/config"
)

func TestSetConfigValue(t *testing.T) {
	cfg := config.Default()

	if err := setConfigValue(cfg, "database.path", "/tmp/x.db"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Database.Path != "/tmp/x.db" {
		t.Errorf("database.path not set: %q", cfg.Database.Path)
	}

	if err := setConfigValue(cfg, "learning.reinforce", "0.25"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Learning.Reinforce != 0.25 {
		t.Errorf("learning.reinforce not set: %f", cfg.Learning.Reinforce)
	}

	if err := setConfigValue(cfg, "learning.sweep_interval", "45m"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Learning.SweepInterval != 45*time.Minute {
		t.Errorf("learning.sweep_interval not set: %s", cfg.Learning.SweepInterval)
	}

	if err := setConfigValue(cfg, "learning.decay", "1.5"); err == nil {
		t.Error("expected an error for a rate above 1")
	}
	if err := setConfigValue(cfg, "logging.level", "loud"); err == nil {
		t.Error("expected an error for an invalid log level")
	}
	if err := setConfigValue(cfg, "no.such.key", "x"); err == nil {
		t.Error("expected an error for an unknown key")
	}
}

func TestGetConfigValue(t *testing.T) {
	cfg := config.Default()
	cfg.Policy.Path = "/etc/choreo/policy.yaml"

	got, err := getConfigValue(cfg, "policy.path")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "/etc/choreo/policy.yaml" {
		t.Errorf("unexpected value: %q", got)
	}

	if _, err := getConfigValue(cfg, "no.such.key"); err == nil {
		t.Error("expected an error for an unknown key")
	}
}
