// Package policy provides the severity-based auto-approval policy for
// routing decisions. The policy is file-backed and hot-reloadable: the
// in-memory rule map is swapped atomically so readers never observe a
// partially loaded policy.
package policy

import (
	"fmt"
	"os"
	"sync/atomic"

	"gopkg.in/yaml.v3"

	"github.com/choreohq/choreo/pkg/models"
)

// Rule holds the policy settings for one severity level.
type Rule struct {
	// AutoApprove resolves matching pending decisions during queue reads.
	AutoApprove bool `yaml:"auto_approve"`
	// Note is an optional operator-facing explanation of the rule.
	Note string `yaml:"note,omitempty"`
}

// File is the on-disk policy document.
type File struct {
	// SeverityLevels maps severity name to its rule.
	SeverityLevels map[string]Rule `yaml:"severity_levels"`
}

// Engine answers auto-approval questions from the currently loaded policy.
// The zero value is a valid engine with an empty policy (nothing approved).
type Engine struct {
	rules atomic.Pointer[map[models.Severity]Rule]
	path  string
}

// NewEngine creates an engine bound to the given policy file. A missing
// file is not an error; the engine starts with an empty policy.
func NewEngine(path string) (*Engine, error) {
	e := &Engine{path: path}
	if err := e.Reload(); err != nil {
		if os.IsNotExist(err) {
			e.set(map[models.Severity]Rule{})
			return e, nil
		}
		return nil, err
	}
	return e, nil
}

// Path returns the policy file path.
func (e *Engine) Path() string {
	return e.path
}

// Reload re-reads the policy file and atomically replaces the rule map.
func (e *Engine) Reload() error {
	raw, err := os.ReadFile(e.path)
	if err != nil {
		return err
	}

	var f File
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return fmt.Errorf("parse policy %s: %w", e.path, err)
	}

	rules := make(map[models.Severity]Rule, len(f.SeverityLevels))
	for name, rule := range f.SeverityLevels {
		rules[models.Severity(name)] = rule
	}
	e.set(rules)
	return nil
}

// AutoApprove reports whether decisions of the given severity are
// auto-approved by the current policy.
func (e *Engine) AutoApprove(severity models.Severity) bool {
	rules := e.rules.Load()
	if rules == nil {
		return false
	}
	return (*rules)[severity].AutoApprove
}

// Rules returns a copy of the current rule map.
func (e *Engine) Rules() map[models.Severity]Rule {
	rules := e.rules.Load()
	if rules == nil {
		return map[models.Severity]Rule{}
	}
	out := make(map[models.Severity]Rule, len(*rules))
	for k, v := range *rules {
		out[k] = v
	}
	return out
}

func (e *Engine) set(rules map[models.Severity]Rule) {
	e.rules.Store(&rules)
}
