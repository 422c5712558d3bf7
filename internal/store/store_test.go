package store

import (
	"context"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/choreohq/choreo/pkg/models"
)

// setupTestDB creates a new temporary database for testing.
func setupTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := db.Migrate(); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
	})
	return db
}

func testWorkflow() *models.Workflow {
	return &models.Workflow{
		ID:    "workflow_demo",
		Entry: "validator",
		Nodes: map[string]*models.AgentNode{
			"validator": {
				ID: "validator", Name: "Validator", Type: models.AgentTypeValidation,
				Next: []models.OutgoingEdge{
					{Target: "executor", Probability: 0.8, Condition: "valid"},
					{Target: "auditor", Probability: 0.2, Condition: "invalid"},
				},
			},
			"executor": {
				ID: "executor", Name: "Executor", Type: models.AgentTypeExecution,
				Next: []models.OutgoingEdge{
					{Target: "auditor", Probability: 1.0},
				},
			},
			"auditor": {ID: "auditor", Name: "Auditor", Type: models.AgentTypeAudit},
		},
	}
}

func TestSaveLoadWorkflow(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if err := db.SaveWorkflow(ctx, testWorkflow()); err != nil {
		t.Fatalf("SaveWorkflow failed: %v", err)
	}

	w, err := db.LoadWorkflow(ctx, "workflow_demo")
	if err != nil {
		t.Fatalf("LoadWorkflow failed: %v", err)
	}

	if w.Entry != "validator" {
		t.Errorf("entry = %q, want validator", w.Entry)
	}
	if len(w.Nodes) != 3 {
		t.Fatalf("expected 3 nodes, got %d", len(w.Nodes))
	}

	validator := w.Nodes["validator"]
	if len(validator.Next) != 2 {
		t.Fatalf("expected 2 edges from validator, got %d", len(validator.Next))
	}
	// Definition order preserved.
	if validator.Next[0].Target != "executor" || validator.Next[1].Target != "auditor" {
		t.Errorf("edge order = %q, %q; want executor, auditor", validator.Next[0].Target, validator.Next[1].Target)
	}
	if validator.Next[0].Probability != 0.8 {
		t.Errorf("probability = %v, want 0.8", validator.Next[0].Probability)
	}
}

func TestLoadWorkflowMissing(t *testing.T) {
	db := setupTestDB(t)

	w, err := db.LoadWorkflow(context.Background(), "nope")
	if err != nil {
		t.Fatalf("LoadWorkflow failed: %v", err)
	}
	if !w.Empty() {
		t.Error("missing workflow should load empty")
	}
}

func TestSaveWorkflowPreservesLearnedEdges(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if err := db.SaveWorkflow(ctx, testWorkflow()); err != nil {
		t.Fatalf("SaveWorkflow failed: %v", err)
	}
	if err := db.AddFallbackEdge(ctx, "workflow_demo", "executor", "API_Tool", 0.5); err != nil {
		t.Fatalf("AddFallbackEdge failed: %v", err)
	}

	// Re-seeding the workflow must not drop the learned edge.
	if err := db.SaveWorkflow(ctx, testWorkflow()); err != nil {
		t.Fatalf("SaveWorkflow failed: %v", err)
	}

	w, err := db.LoadWorkflow(ctx, "workflow_demo")
	if err != nil {
		t.Fatalf("LoadWorkflow failed: %v", err)
	}

	var learned *models.OutgoingEdge
	for i, e := range w.Nodes["executor"].Next {
		if e.Learned {
			learned = &w.Nodes["executor"].Next[i]
		}
	}
	if learned == nil {
		t.Fatal("expected learned edge to survive workflow rewrite")
	}
	if learned.Target != "API_Tool" || learned.Probability != 0.5 || learned.Uses != 1 {
		t.Errorf("learned edge = %+v", learned)
	}
}

func TestAddFallbackEdgeAccumulates(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if err := db.SaveWorkflow(ctx, testWorkflow()); err != nil {
		t.Fatalf("SaveWorkflow failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := db.AddFallbackEdge(ctx, "workflow_demo", "auditor", "RPA_Tool", 0.3); err != nil {
			t.Fatalf("AddFallbackEdge failed: %v", err)
		}
	}

	w, _ := db.LoadWorkflow(ctx, "workflow_demo")
	edges := w.Nodes["auditor"].Next
	if len(edges) != 1 {
		t.Fatalf("expected 1 learned edge, got %d", len(edges))
	}
	if math.Abs(edges[0].Probability-0.9) > 1e-9 {
		t.Errorf("probability = %v, want 0.9", edges[0].Probability)
	}
	if edges[0].Uses != 3 {
		t.Errorf("uses = %d, want 3", edges[0].Uses)
	}

	// A fourth strengthening clamps at 1.0.
	if err := db.AddFallbackEdge(ctx, "workflow_demo", "auditor", "RPA_Tool", 0.3); err != nil {
		t.Fatalf("AddFallbackEdge failed: %v", err)
	}
	w, _ = db.LoadWorkflow(ctx, "workflow_demo")
	if p := w.Nodes["auditor"].Next[0].Probability; p != 1.0 {
		t.Errorf("probability = %v, want clamp at 1.0", p)
	}
}

func TestReinforceAndDecay(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if err := db.SaveWorkflow(ctx, testWorkflow()); err != nil {
		t.Fatalf("SaveWorkflow failed: %v", err)
	}

	if err := db.Reinforce(ctx, "workflow_demo", "validator", "executor", 0.1); err != nil {
		t.Fatalf("Reinforce failed: %v", err)
	}
	w, _ := db.LoadWorkflow(ctx, "workflow_demo")
	if p := w.Nodes["validator"].Next[0].Probability; math.Abs(p-0.9) > 1e-9 {
		t.Errorf("after reinforce probability = %v, want 0.9", p)
	}

	if err := db.Decay(ctx, "workflow_demo", "validator", "executor", 0.5); err != nil {
		t.Fatalf("Decay failed: %v", err)
	}
	w, _ = db.LoadWorkflow(ctx, "workflow_demo")
	if p := w.Nodes["validator"].Next[0].Probability; math.Abs(p-0.45) > 1e-9 {
		t.Errorf("after decay probability = %v, want 0.45", p)
	}
}

func TestDecayAllLearned(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if err := db.SaveWorkflow(ctx, testWorkflow()); err != nil {
		t.Fatalf("SaveWorkflow failed: %v", err)
	}
	if err := db.AddFallbackEdge(ctx, "workflow_demo", "executor", "API_Tool", 0.6); err != nil {
		t.Fatalf("AddFallbackEdge failed: %v", err)
	}

	// Zero rate is the identity.
	if err := db.DecayAllLearned(ctx, 0.0); err != nil {
		t.Fatalf("DecayAllLearned failed: %v", err)
	}
	w, _ := db.LoadWorkflow(ctx, "workflow_demo")
	if p := learnedProbability(t, w, "executor"); math.Abs(p-0.6) > 1e-9 {
		t.Errorf("probability after zero decay = %v, want 0.6", p)
	}
	// Definition edges are untouched by the sweep.
	if p := w.Nodes["validator"].Next[0].Probability; p != 0.8 {
		t.Errorf("definition edge probability = %v, want 0.8", p)
	}

	// Full rate zeroes learned edges.
	if err := db.DecayAllLearned(ctx, 1.0); err != nil {
		t.Fatalf("DecayAllLearned failed: %v", err)
	}
	w, _ = db.LoadWorkflow(ctx, "workflow_demo")
	if p := learnedProbability(t, w, "executor"); p != 0 {
		t.Errorf("probability after full decay = %v, want 0", p)
	}

	if err := db.DecayAllLearned(ctx, 1.5); err == nil {
		t.Error("expected error for rate outside [0, 1]")
	}
}

func learnedProbability(t *testing.T, w *models.Workflow, nodeID string) float64 {
	t.Helper()
	for _, e := range w.Nodes[nodeID].Next {
		if e.Learned {
			return e.Probability
		}
	}
	t.Fatalf("no learned edge on node %s", nodeID)
	return 0
}

func TestSaveAndResolveDecision(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	d := &models.Decision{
		ID:             "decision-1",
		Agent:          "Validator",
		Step:           "validate",
		Recommendation: "API_Tool",
		Tools:          []string{"API_Tool", "RPA_Tool"},
		Explanations:   map[string]string{"policy": "validation prefers API_Tool"},
		Severity:       models.SeverityMedium,
		Status:         models.DecisionPending,
		CreatedAt:      time.Now(),
	}
	if err := db.SaveDecision(ctx, d); err != nil {
		t.Fatalf("SaveDecision failed: %v", err)
	}

	applied, err := db.ResolveDecision(ctx, "decision-1", "API_Tool", models.DecisionApproved, models.ActorPolicy)
	if err != nil {
		t.Fatalf("ResolveDecision failed: %v", err)
	}
	if !applied {
		t.Fatal("first resolution should apply")
	}

	// Double resolution is a no-op, not an error.
	applied, err = db.ResolveDecision(ctx, "decision-1", "RPA_Tool", models.DecisionRejected, models.ActorSystem)
	if err != nil {
		t.Fatalf("second ResolveDecision failed: %v", err)
	}
	if applied {
		t.Error("second resolution should be a no-op")
	}

	got, err := db.GetDecision(ctx, "decision-1")
	if err != nil {
		t.Fatalf("GetDecision failed: %v", err)
	}
	if got.Status != models.DecisionApproved || got.Choice != "API_Tool" || got.ResolvedBy != models.ActorPolicy {
		t.Errorf("decision = status %q choice %q by %q", got.Status, got.Choice, got.ResolvedBy)
	}
	if got.ResolvedAt == nil {
		t.Error("resolved_at should be set")
	}
	if len(got.Tools) != 2 {
		t.Errorf("tools round-trip = %v", got.Tools)
	}
}

func TestResolveDecisionNonTerminal(t *testing.T) {
	db := setupTestDB(t)

	if _, err := db.ResolveDecision(context.Background(), "x", "y", models.DecisionPending, "admin"); err == nil {
		t.Error("expected error resolving to a non-terminal status")
	}
}

// stubPolicy auto-approves a fixed severity set.
type stubPolicy map[models.Severity]bool

func (p stubPolicy) AutoApprove(s models.Severity) bool { return p[s] }

func TestPendingDecisionsAutoApply(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	base := time.Now()
	for i, d := range []*models.Decision{
		{ID: "d-high", Agent: "A", Step: "s", Recommendation: "API_Tool", Severity: models.SeverityHigh, Status: models.DecisionPending},
		{ID: "d-low", Agent: "B", Step: "s", Recommendation: "RPA_Tool", Severity: models.SeverityLow, Status: models.DecisionPending},
		{ID: "d-med", Agent: "C", Step: "s", Recommendation: "API_Tool", Severity: models.SeverityMedium, Status: models.DecisionPending},
	} {
		d.CreatedAt = base.Add(time.Duration(i) * time.Second)
		if err := db.SaveDecision(ctx, d); err != nil {
			t.Fatalf("SaveDecision failed: %v", err)
		}
	}

	queue, err := db.PendingDecisions(ctx, 10, "", stubPolicy{models.SeverityHigh: true})
	if err != nil {
		t.Fatalf("PendingDecisions failed: %v", err)
	}

	if len(queue) != 2 {
		t.Fatalf("expected 2 queued decisions, got %d", len(queue))
	}
	// Ascending creation order.
	if queue[0].ID != "d-low" || queue[1].ID != "d-med" {
		t.Errorf("queue order = %s, %s", queue[0].ID, queue[1].ID)
	}

	// The high-severity decision was persisted as auto-approved.
	got, err := db.GetDecision(ctx, "d-high")
	if err != nil {
		t.Fatalf("GetDecision failed: %v", err)
	}
	if got.Status != models.DecisionAutoApproved {
		t.Errorf("status = %q, want auto_approved", got.Status)
	}
	if got.ResolvedBy != models.ActorPolicy {
		t.Errorf("resolved_by = %q, want policy", got.ResolvedBy)
	}
	if got.Choice != "API_Tool" {
		t.Errorf("choice = %q, want the recommendation", got.Choice)
	}
}

func TestPendingDecisionsSeverityFilterAndLimit(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	base := time.Now()
	for i := 0; i < 5; i++ {
		d := &models.Decision{
			ID:             "d-" + string(rune('a'+i)),
			Agent:          "A",
			Step:           "s",
			Recommendation: "API_Tool",
			Severity:       models.SeverityLow,
			Status:         models.DecisionPending,
			CreatedAt:      base.Add(time.Duration(i) * time.Second),
		}
		if err := db.SaveDecision(ctx, d); err != nil {
			t.Fatalf("SaveDecision failed: %v", err)
		}
	}

	queue, err := db.PendingDecisions(ctx, 3, models.SeverityLow, nil)
	if err != nil {
		t.Fatalf("PendingDecisions failed: %v", err)
	}
	if len(queue) != 3 {
		t.Errorf("limit not applied: got %d", len(queue))
	}

	queue, err = db.PendingDecisions(ctx, 10, models.SeverityHigh, nil)
	if err != nil {
		t.Fatalf("PendingDecisions failed: %v", err)
	}
	if len(queue) != 0 {
		t.Errorf("severity filter not applied: got %d", len(queue))
	}
}

func TestSaveTraceAndTracesByRun(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	base := time.Now()
	for i, node := range []string{"validator", "executor"} {
		tr := &models.ExecutionTrace{
			ID:         "trace-" + node,
			RunID:      "run-1",
			WorkflowID: "workflow_demo",
			NodeID:     node,
			Status:     models.TraceSuccess,
			Details:    map[string]any{"output": "ok"},
			Timestamp:  base.Add(time.Duration(i) * time.Second),
		}
		if err := db.SaveTrace(ctx, tr); err != nil {
			t.Fatalf("SaveTrace failed: %v", err)
		}
	}

	traces, err := db.TracesByRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("TracesByRun failed: %v", err)
	}
	if len(traces) != 2 {
		t.Fatalf("expected 2 traces, got %d", len(traces))
	}
	if traces[0].NodeID != "validator" {
		t.Errorf("trace order: first = %s, want validator", traces[0].NodeID)
	}
	if traces[0].Details["output"] != "ok" {
		t.Errorf("details round-trip = %v", traces[0].Details)
	}
}

func TestLogEventAndRecentEvents(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if err := db.LogEvent(ctx, "decision", "decision saved", map[string]any{"agent": "Validator"}); err != nil {
		t.Fatalf("LogEvent failed: %v", err)
	}
	if err := db.LogEvent(ctx, "feedback", "edge reinforced", nil); err != nil {
		t.Fatalf("LogEvent failed: %v", err)
	}

	events, err := db.RecentEvents(ctx, "decision", 10)
	if err != nil {
		t.Fatalf("RecentEvents failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 decision event, got %d", len(events))
	}
	if events[0].Metadata["agent"] != "Validator" {
		t.Errorf("metadata round-trip = %v", events[0].Metadata)
	}
}
