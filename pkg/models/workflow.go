package models

// AgentType tags the kind of work a node performs. The vocabulary is open;
// these constants cover the types the recommendation policy knows about.
type AgentType string

const (
	// AgentTypeValidation indicates a node that validates inputs or state.
	AgentTypeValidation AgentType = "validation"
	// AgentTypeExecution indicates a node that performs the actual work.
	AgentTypeExecution AgentType = "execution"
	// AgentTypeAudit indicates a node that reviews completed work.
	AgentTypeAudit AgentType = "audit"
	// AgentTypeIngest indicates a node that loads external data.
	AgentTypeIngest AgentType = "ingest"
	// AgentTypeReport indicates a node that produces a summary artifact.
	AgentTypeReport AgentType = "report"
)

// OutgoingEdge is a probability-weighted transition from one node to another.
// Edges are independent Bernoulli gates: during traversal each edge fires on
// its own draw, so zero, some, or all edges of a node may fire in one pass.
type OutgoingEdge struct {
	// Target is the ID of the destination node.
	Target string `json:"target" yaml:"target"`
	// Probability is the firing weight in [0, 1].
	Probability float64 `json:"probability" yaml:"probability"`
	// Condition is an optional tag describing when the edge applies.
	Condition string `json:"condition,omitempty" yaml:"condition,omitempty"`
	// Learned is true for edges created by the vector-fallback path
	// rather than by the workflow definition.
	Learned bool `json:"learned,omitempty" yaml:"learned,omitempty"`
	// Uses counts how many times the learned edge was created or strengthened.
	Uses int `json:"uses,omitempty" yaml:"uses,omitempty"`
}

// AgentNode is a single step in the workflow graph.
type AgentNode struct {
	// ID is the unique identifier of the node within its workflow.
	ID string `json:"id" yaml:"id"`
	// Name is the display name of the step (e.g. "file_upload").
	Name string `json:"name" yaml:"name"`
	// Type tags the kind of work the node performs.
	Type AgentType `json:"type" yaml:"type"`
	// Next lists the outgoing edges in definition order.
	Next []OutgoingEdge `json:"next,omitempty" yaml:"next,omitempty"`
}

// Workflow is a directed graph of agent nodes with a designated entry point.
// The entry node is explicit so that runs are deterministic regardless of
// map iteration order.
type Workflow struct {
	// ID is the unique identifier of the workflow.
	ID string `json:"id" yaml:"id"`
	// Entry is the ID of the node where traversal starts.
	Entry string `json:"entry" yaml:"entry"`
	// Nodes maps node ID to the node definition.
	Nodes map[string]*AgentNode `json:"nodes" yaml:"nodes"`
}

// Empty reports whether the workflow has no nodes.
func (w *Workflow) Empty() bool {
	return w == nil || len(w.Nodes) == 0
}

// EntryNode returns the designated entry node, or nil if the entry ID is
// unset or does not resolve to a node.
func (w *Workflow) EntryNode() *AgentNode {
	if w == nil || w.Entry == "" {
		return nil
	}
	return w.Nodes[w.Entry]
}
