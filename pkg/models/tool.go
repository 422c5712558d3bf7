package models

import "time"

// ToolDescriptor describes a registered tool: its identity, capability tags,
// embedding vector, and running performance counters.
type ToolDescriptor struct {
	// Name is the unique tool name (e.g. "API_Tool").
	Name string `json:"name"`
	// Description is a human-readable summary of what the tool does.
	Description string `json:"description,omitempty"`
	// Capabilities lists capability tags (e.g. "rest_apis").
	Capabilities []string `json:"capabilities,omitempty"`
	// InputTypes lists the input type tags the tool accepts.
	InputTypes []string `json:"input_types,omitempty"`
	// OutputTypes lists the output type tags the tool produces.
	OutputTypes []string `json:"output_types,omitempty"`
	// Embedding is the fixed-length vector used for similarity search.
	Embedding []float32 `json:"-"`
	// SuccessRate is the observed success fraction in [0, 1].
	SuccessRate float64 `json:"success_rate"`
	// AvgLatency is the mean execution time across invocations.
	AvgLatency time.Duration `json:"avg_latency"`
	// Executions is the total number of recorded invocations.
	Executions int64 `json:"executions"`
}
