package tool

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/choreohq/choreo/pkg/models"
)

// Registry holds the registered tools in registration order. Registration
// happens at startup from configuration; after that the registry is
// effectively read-only and safe for concurrent dispatch.
type Registry struct {
	mu    sync.RWMutex
	order []string
	tools map[string]Tool
	stats map[string]*stats
}

// NewRegistry creates an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]Tool),
		stats: make(map[string]*stats),
	}
}

// Register adds a tool. Registering a name twice replaces the tool but keeps
// its position and accumulated stats.
func (r *Registry) Register(t Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := t.Name()
	if _, exists := r.tools[name]; !exists {
		r.order = append(r.order, name)
		r.stats[name] = &stats{}
	}
	r.tools[name] = t
}

// List returns the tool names in registration order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Get returns the named tool, or nil if absent.
func (r *Registry) Get(name string) Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tools[name]
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Execute invokes the named tool and records its performance counters.
// An unregistered name is the only error case; a tool that ran and failed
// is a normal Result.
func (r *Registry) Execute(ctx context.Context, name string, p Params) (Result, error) {
	r.mu.RLock()
	t := r.tools[name]
	st := r.stats[name]
	r.mu.RUnlock()

	if t == nil {
		return Result{}, fmt.Errorf("execute %q: %w", name, ErrToolNotFound)
	}

	start := time.Now()
	res := t.Execute(ctx, p)
	st.record(time.Since(start), res.Success)
	return res, nil
}

// Descriptors returns the descriptors of all tools in registration order,
// with current performance counters filled in.
func (r *Registry) Descriptors() []models.ToolDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.ToolDescriptor, 0, len(r.order))
	for _, name := range r.order {
		d := r.tools[name].Descriptor()
		d.SuccessRate, d.AvgLatency, d.Executions = r.stats[name].snapshot()
		out = append(out, d)
	}
	return out
}

// StatSnapshot returns the performance stats of one tool as a decision-time
// comparison entry.
func (r *Registry) StatSnapshot(name string) models.ToolStat {
	r.mu.RLock()
	st := r.stats[name]
	r.mu.RUnlock()

	if st == nil {
		return models.ToolStat{Tool: name}
	}
	rate, latency, executions := st.snapshot()
	return models.ToolStat{Tool: name, SuccessRate: rate, AvgLatency: latency, Executions: executions}
}
