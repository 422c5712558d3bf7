// Package orchestrator drives workflow runs: it loads the graph, executes
// each node's recommended tool through the dispatch fallback chain, records
// decisions and execution traces, and fans out across outgoing edges with
// independent probability draws, executing fired branches concurrently.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/choreohq/choreo/internal/learning"
	"github.com/choreohq/choreo/internal/similarity"
	"github.com/choreohq/choreo/internal/store"
	"github.com/choreohq/choreo/internal/tool"
	"github.com/choreohq/choreo/pkg/models"
)

// ErrNoEntryPoint indicates a workflow without a designated entry node.
var ErrNoEntryPoint = errors.New("workflow has no designated entry node")

// Orchestrator coordinates the entire run from graph load to completion.
// It wires together: store -> recommendation -> dispatch -> traces -> branching.
type Orchestrator struct {
	store    store.Store
	registry *tool.Registry
	index    *similarity.Index
	feedback *learning.Feedback
	logger   *slog.Logger
	sample   func() float64
}

// New creates an Orchestrator. The store and registry are required; options
// configure the rest. The similarity index is rebuilt once here, from the
// registry's current tools, and stays read-only for the orchestrator's
// lifetime.
func New(st store.Store, registry *tool.Registry, opts ...Option) (*Orchestrator, error) {
	if st == nil {
		return nil, fmt.Errorf("orchestrator requires a store")
	}
	if registry == nil {
		return nil, fmt.Errorf("orchestrator requires a tool registry")
	}

	o := &Orchestrator{
		store:    st,
		registry: registry,
	}
	for _, opt := range opts {
		opt(o)
	}

	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.sample == nil {
		o.sample = lockedUniform()
	}
	if o.index == nil {
		o.index = similarity.NewIndex()
		o.index.RebuildFromNames(registry.List())
	}
	if o.feedback == nil {
		o.feedback = learning.New(st, st, o.logger, 0, 0)
	}

	return o, nil
}

// RunResult summarizes one workflow run. A run always completes with a
// result, even under partial backend or tool outages.
type RunResult struct {
	// RunID is the unique identifier assigned to this run.
	RunID string
	// WorkflowID is the workflow that was executed.
	WorkflowID string
	// NodesExecuted is the number of node execution attempts.
	NodesExecuted int
	// Succeeded is the number of nodes whose dispatch succeeded.
	Succeeded int
	// Failed is the number of nodes where every tool failed.
	Failed int
	// SkippedEdges counts dangling or malformed edges skipped with a warning.
	SkippedEdges int
	// Duration is the wall-clock time of the run.
	Duration time.Duration
}

// Run executes the workflow with the given ID. If the store is unavailable
// or the workflow is empty, the built-in demo graph is executed instead so
// the rest of the pipeline always has something to run against.
func (o *Orchestrator) Run(ctx context.Context, workflowID string) (*RunResult, error) {
	start := time.Now()

	wf, err := o.store.LoadWorkflow(ctx, workflowID)
	if err != nil {
		o.logger.Warn("workflow load failed, using demo workflow", "workflow_id", workflowID, "error", err)
		wf = DemoWorkflow(workflowID)
	} else if wf.Empty() {
		o.logger.Warn("workflow empty, using demo workflow", "workflow_id", workflowID)
		wf = DemoWorkflow(workflowID)
	}

	entry := wf.EntryNode()
	if entry == nil {
		return nil, fmt.Errorf("workflow %s: %w", workflowID, ErrNoEntryPoint)
	}

	r := &run{
		o:        o,
		id:       uuid.NewString(),
		workflow: wf,
	}

	o.logger.Info("running workflow", "workflow_id", wf.ID, "run_id", r.id, "entry", entry.ID)
	o.logEvent(ctx, "workflow", fmt.Sprintf("run started for %s", wf.ID), map[string]any{
		"run_id": r.id,
		"nodes":  len(wf.Nodes),
	})

	r.executeNode(ctx, entry, pathWith(nil, entry.ID))

	res := r.result(wf.ID, time.Since(start))
	o.logEvent(ctx, "workflow", fmt.Sprintf("run completed for %s", wf.ID), map[string]any{
		"run_id":    res.RunID,
		"executed":  res.NodesExecuted,
		"succeeded": res.Succeeded,
		"failed":    res.Failed,
	})
	o.logger.Info("workflow run completed",
		"run_id", res.RunID,
		"executed", res.NodesExecuted,
		"succeeded", res.Succeeded,
		"failed", res.Failed,
		"skipped_edges", res.SkippedEdges,
		"duration", res.Duration)

	return res, nil
}

// run holds the mutable state of one workflow run. Counters are touched
// from concurrent branches and guarded by the mutex.
type run struct {
	o        *Orchestrator
	id       string
	workflow *models.Workflow

	mu           sync.Mutex
	executed     int
	succeeded    int
	failed       int
	skippedEdges int
}

func (r *run) result(workflowID string, d time.Duration) *RunResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	return &RunResult{
		RunID:         r.id,
		WorkflowID:    workflowID,
		NodesExecuted: r.executed,
		Succeeded:     r.succeeded,
		Failed:        r.failed,
		SkippedEdges:  r.skippedEdges,
		Duration:      d,
	}
}

func (r *run) countExecution(success bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.executed++
	if success {
		r.succeeded++
	} else {
		r.failed++
	}
}

func (r *run) countSkippedEdge() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.skippedEdges++
}

// logEvent records an engine event best-effort; a store outage only logs.
func (o *Orchestrator) logEvent(ctx context.Context, eventType, message string, metadata map[string]any) {
	if err := o.store.LogEvent(ctx, eventType, message, metadata); err != nil {
		o.logger.Debug("event write skipped", "type", eventType, "error", err)
	}
}

// lockedUniform returns a goroutine-safe uniform sampler; concurrent
// branches draw from it simultaneously.
func lockedUniform() func() float64 {
	var mu sync.Mutex
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	return func() float64 {
		mu.Lock()
		defer mu.Unlock()
		return rng.Float64()
	}
}

// pathWith returns a copy of path with id added. Each branch owns its copy,
// so sibling branches never see each other's visited nodes.
func pathWith(path map[string]bool, id string) map[string]bool {
	next := make(map[string]bool, len(path)+1)
	for k := range path {
		next[k] = true
	}
	next[id] = true
	return next
}
