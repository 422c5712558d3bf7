package store

import (
	"context"
	"io"

	"github.com/choreohq/choreo/pkg/models"
)

// ApprovalPolicy decides whether a severity level is auto-approved during a
// pending-queue read. The policy package provides the file-backed
// implementation; the store only needs this one question answered.
type ApprovalPolicy interface {
	AutoApprove(severity models.Severity) bool
}

// WorkflowStore handles workflow graph persistence.
type WorkflowStore interface {
	// SaveWorkflow writes the workflow graph, replacing any prior
	// definition-time nodes and edges. Learned edges survive the rewrite.
	SaveWorkflow(ctx context.Context, w *models.Workflow) error
	// LoadWorkflow reads the workflow graph. A missing workflow returns an
	// empty (non-nil) workflow, not an error, so callers can fail soft.
	LoadWorkflow(ctx context.Context, id string) (*models.Workflow, error)
}

// DecisionStore handles decision lifecycle persistence.
type DecisionStore interface {
	// SaveDecision creates a decision record in its current state.
	SaveDecision(ctx context.Context, d *models.Decision) error
	// ResolveDecision transitions a decision to a terminal status. The
	// transition only applies while the stored status is still pending;
	// a second resolution is a no-op and returns false.
	ResolveDecision(ctx context.Context, id, choice string, status models.DecisionStatus, resolvedBy string) (bool, error)
	// GetDecision reads a single decision by ID.
	GetDecision(ctx context.Context, id string) (*models.Decision, error)
	// PendingDecisions returns decisions still pending, ordered by ascending
	// creation time and bounded by limit. A non-empty severity filters the
	// queue. When policy is non-nil, decisions whose severity the policy
	// auto-approves are resolved as a side effect and excluded from the
	// returned queue.
	PendingDecisions(ctx context.Context, limit int, severity models.Severity, policy ApprovalPolicy) ([]*models.Decision, error)
}

// TraceStore handles execution trace persistence.
type TraceStore interface {
	// SaveTrace appends one execution trace.
	SaveTrace(ctx context.Context, t *models.ExecutionTrace) error
	// TracesByRun returns the traces recorded for one run.
	TracesByRun(ctx context.Context, runID string) ([]*models.ExecutionTrace, error)
}

// FeedbackStore mutates edge probabilities. All probability writes go
// through single-statement conditional updates so that concurrent branches
// targeting the same edge converge instead of clobbering each other.
type FeedbackStore interface {
	// AddFallbackEdge creates or strengthens a learned edge. On create the
	// probability is the score and uses is 1; on repeat the probability
	// accumulates (clamped to 1.0) and uses increments.
	AddFallbackEdge(ctx context.Context, workflowID, from, to string, score float64) error
	// Reinforce additively increases the probability of an edge (clamped to 1.0).
	Reinforce(ctx context.Context, workflowID, from, to string, amount float64) error
	// Decay multiplicatively decreases the probability of an edge by (1 - amount).
	Decay(ctx context.Context, workflowID, from, to string, amount float64) error
	// DecayAllLearned multiplies every learned edge's probability by
	// (1 - rate), across all workflows.
	DecayAllLearned(ctx context.Context, rate float64) error
}

// EventLogger records engine events best-effort. Failures are the caller's
// to swallow; an event write must never gate an operation.
type EventLogger interface {
	LogEvent(ctx context.Context, eventType, message string, metadata map[string]any) error
}

// Store is the full workflow-store surface the orchestrator composes.
type Store interface {
	io.Closer
	WorkflowStore
	DecisionStore
	TraceStore
	FeedbackStore
	EventLogger
}

// Compile-time verification that DB implements all store interfaces.
var (
	_ Store         = (*DB)(nil)
	_ WorkflowStore = (*DB)(nil)
	_ DecisionStore = (*DB)(nil)
	_ TraceStore    = (*DB)(nil)
	_ FeedbackStore = (*DB)(nil)
	_ EventLogger   = (*DB)(nil)
)
