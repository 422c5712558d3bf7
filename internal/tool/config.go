package tool

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Definition is one tool entry in the tools file. The registry is populated
// from an explicit typed list like this at startup; there is no runtime
// plugin scanning.
type Definition struct {
	// Name is the unique tool name.
	Name string `yaml:"name"`
	// Kind selects the implementation: api, rpa, or echo.
	Kind string `yaml:"kind"`
	// Endpoint is the target URL for api tools.
	Endpoint string `yaml:"endpoint,omitempty"`
	// Method is the HTTP method for api tools (default GET).
	Method string `yaml:"method,omitempty"`
	// Timeout bounds a single api invocation.
	Timeout time.Duration `yaml:"timeout,omitempty"`
	// SuccessRate is the simulated success fraction for rpa tools.
	SuccessRate *float64 `yaml:"success_rate,omitempty"`
	// Delay is the simulated execution delay for rpa tools.
	Delay time.Duration `yaml:"delay,omitempty"`
}

// definitionsFile is the on-disk tools document.
type definitionsFile struct {
	Tools []Definition `yaml:"tools"`
}

// Build creates the tool for a definition.
func (d Definition) Build() (Tool, error) {
	if d.Name == "" {
		return nil, fmt.Errorf("tool definition missing name")
	}

	switch d.Kind {
	case "api":
		if d.Endpoint == "" {
			return nil, fmt.Errorf("api tool %s missing endpoint", d.Name)
		}
		return NewAPITool(d.Name, d.Endpoint, d.Method, d.Timeout), nil
	case "rpa":
		rate := -1.0
		if d.SuccessRate != nil {
			rate = *d.SuccessRate
		}
		return NewRPATool(d.Name, rate, d.Delay), nil
	case "echo":
		return NewEchoTool(d.Name), nil
	default:
		return nil, fmt.Errorf("tool %s has unknown kind %q", d.Name, d.Kind)
	}
}

// LoadRegistry reads the tools file and registers every valid definition in
// file order. Malformed entries are skipped with a warning so one bad entry
// does not take down the registry.
func LoadRegistry(path string, logger *slog.Logger) (*Registry, error) {
	if logger == nil {
		logger = slog.Default()
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tools file: %w", err)
	}

	var f definitionsFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse tools file %s: %w", path, err)
	}

	r := NewRegistry()
	for _, def := range f.Tools {
		t, err := def.Build()
		if err != nil {
			logger.Warn("skipping tool definition", "name", def.Name, "error", err)
			continue
		}
		r.Register(t)
	}
	return r, nil
}

// DefaultRegistry returns the built-in registry used when no tools file is
// configured: the historical API/RPA/Selenium trio.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(NewAPITool("API_Tool", "http://localhost:8080/api", "", 10*time.Second))
	r.Register(NewRPATool("RPA_Tool", 0.8, 0))
	r.Register(NewRPATool("Selenium_RPA_Tool", 0.9, 0))
	return r
}
