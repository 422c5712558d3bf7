package models

import "time"

// TraceStatus is the outcome of one node execution attempt.
type TraceStatus string

const (
	// TraceSuccess indicates the node's tool invocation succeeded.
	TraceSuccess TraceStatus = "success"
	// TraceFailure indicates every tool in the fallback chain failed.
	TraceFailure TraceStatus = "failure"
)

// ExecutionTrace is an append-only record of the outcome of one node
// execution attempt. There is exactly one trace per attempt, not per edge.
type ExecutionTrace struct {
	// ID is the unique identifier of the trace.
	ID string `json:"id"`
	// RunID identifies the workflow run this trace belongs to.
	RunID string `json:"run_id"`
	// WorkflowID is the workflow the run executed.
	WorkflowID string `json:"workflow_id"`
	// NodeID is the node that was executed.
	NodeID string `json:"node_id"`
	// Status is the outcome of the attempt.
	Status TraceStatus `json:"status"`
	// Details is a structured blob describing the outcome.
	Details map[string]any `json:"details,omitempty"`
	// Timestamp is when the trace was recorded.
	Timestamp time.Time `json:"timestamp"`
}
