package models

import "time"

// DecisionStatus represents the lifecycle state of a routing decision.
// A decision starts pending and transitions exactly once to a terminal state.
type DecisionStatus string

const (
	// DecisionPending indicates the decision awaits resolution.
	DecisionPending DecisionStatus = "pending"
	// DecisionApproved indicates the decision was confirmed by execution
	// (policy, fallback, or vector actor).
	DecisionApproved DecisionStatus = "approved"
	// DecisionAutoApproved indicates the severity policy approved the
	// decision during a queue read.
	DecisionAutoApproved DecisionStatus = "auto_approved"
	// DecisionRejected indicates every candidate tool failed.
	DecisionRejected DecisionStatus = "rejected"
)

// Terminal returns true if the status permits no further transitions.
func (s DecisionStatus) Terminal() bool {
	switch s {
	case DecisionApproved, DecisionAutoApproved, DecisionRejected:
		return true
	default:
		return false
	}
}

// Severity classifies how much scrutiny a decision deserves.
type Severity string

const (
	// SeverityLow marks routine decisions.
	SeverityLow Severity = "low"
	// SeverityMedium marks decisions worth operator attention.
	SeverityMedium Severity = "medium"
	// SeverityHigh marks decisions that normally require manual review.
	SeverityHigh Severity = "high"
)

// Valid returns true if the severity is a known value.
func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh:
		return true
	default:
		return false
	}
}

// Resolving actors recorded on terminal decisions.
const (
	// ActorPolicy resolved the decision because the recommended tool
	// succeeded directly, or the severity policy auto-approved it.
	ActorPolicy = "policy"
	// ActorFallback resolved the decision via the ordered registry search.
	ActorFallback = "fallback"
	// ActorVector resolved the decision via similarity-index discovery.
	ActorVector = "vector"
	// ActorSystem rejected the decision after every tool failed.
	ActorSystem = "system"
	// ActorAdmin resolved the decision manually.
	ActorAdmin = "admin"
)

// ToolStat is a snapshot of one candidate tool's performance at decision time.
type ToolStat struct {
	// Tool is the tool name.
	Tool string `json:"tool"`
	// SuccessRate is the observed success fraction in [0, 1].
	SuccessRate float64 `json:"success_rate"`
	// AvgLatency is the mean execution time.
	AvgLatency time.Duration `json:"avg_latency"`
	// Executions is the total number of recorded invocations.
	Executions int64 `json:"executions"`
}

// Decision records which tool was recommended for one node execution attempt
// and how the recommendation was resolved.
type Decision struct {
	// ID is the unique identifier of the decision.
	ID string `json:"id"`
	// Agent is the name of the originating node.
	Agent string `json:"agent"`
	// Step labels the step within the workflow (node name).
	Step string `json:"step"`
	// Recommendation is the tool the policy table recommended.
	Recommendation string `json:"recommendation"`
	// Tools is the full candidate tool list at decision time.
	Tools []string `json:"tools"`
	// Stats is the comparative performance snapshot for the candidates.
	Stats []ToolStat `json:"stats,omitempty"`
	// Explanations maps aspects to free-form rationale text.
	Explanations map[string]string `json:"explanations,omitempty"`
	// Severity classifies the decision for the approval policy.
	Severity Severity `json:"severity"`
	// Status is the lifecycle state.
	Status DecisionStatus `json:"status"`
	// Choice is the tool that actually resolved the decision.
	Choice string `json:"choice,omitempty"`
	// ResolvedBy is the actor that resolved the decision.
	ResolvedBy string `json:"resolved_by,omitempty"`
	// CreatedAt is when the decision was created.
	CreatedAt time.Time `json:"created_at"`
	// ResolvedAt is when the decision reached a terminal state.
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
}
