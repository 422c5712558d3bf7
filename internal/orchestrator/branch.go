package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/choreohq/choreo/pkg/models"
)

// executeNode runs a single node and fans out across its outgoing edges.
// path is the set of node IDs already visited on this branch; a target in
// path is a cycle and is not re-entered. Returns whether the node's
// dispatch ultimately succeeded.
func (r *run) executeNode(ctx context.Context, node *models.AgentNode, path map[string]bool) bool {
	o := r.o

	candidates := o.registry.List()
	recommendation := recommendTool(node, candidates)
	decision := r.newDecision(node, recommendation, candidates)

	if err := o.store.SaveDecision(ctx, decision); err != nil {
		o.logger.Warn("decision write skipped", "node", node.ID, "decision_id", decision.ID, "error", err)
	}

	o.logger.Info("executing node",
		"run_id", r.id,
		"node", node.ID,
		"type", node.Type,
		"recommendation", recommendation)

	out := r.dispatch(ctx, node, recommendation, decision.ID)
	r.countExecution(out.result.Success)
	r.saveTrace(ctx, node, decision.ID, out)

	// Independent draw per edge: zero, one, or several successors may fire.
	var fired []models.OutgoingEdge
	for _, edge := range node.Next {
		if edge.Target == "" || r.workflow.Nodes[edge.Target] == nil {
			o.logger.Warn("skipping edge with unknown target",
				"node", node.ID, "target", edge.Target)
			r.countSkippedEdge()
			o.logEvent(ctx, "workflow", "skipped edge with unknown target", map[string]any{
				"run_id": r.id,
				"source": node.ID,
				"target": edge.Target,
			})
			continue
		}
		if path[edge.Target] {
			o.logger.Debug("cycle guard stopped edge", "node", node.ID, "target", edge.Target)
			continue
		}
		if o.sample() < edge.Probability {
			fired = append(fired, edge)
		}
	}

	if len(fired) == 0 {
		return out.result.Success
	}

	// Fork the fired branches, join before returning. Branch outcomes feed
	// the adaptive weights on the edges that carried them.
	type branchOutcome struct {
		edge    models.OutgoingEdge
		success bool
	}
	outcomes := make([]branchOutcome, len(fired))

	g, gctx := errgroup.WithContext(ctx)
	for i, edge := range fired {
		i, edge := i, edge
		child := r.workflow.Nodes[edge.Target]
		childPath := pathWith(path, edge.Target)
		g.Go(func() error {
			outcomes[i] = branchOutcome{edge: edge, success: r.executeNode(gctx, child, childPath)}
			return nil
		})
	}
	// Branches never return errors; failures are data.
	_ = g.Wait()

	for _, bo := range outcomes {
		if err := o.feedback.RecordOutcome(ctx, r.workflow.ID, node.ID, bo.edge.Target, bo.success); err != nil {
			o.logger.Warn("edge feedback skipped",
				"source", node.ID, "target", bo.edge.Target, "error", err)
		}
	}

	return out.result.Success
}

// newDecision captures the candidate set and their performance snapshot at
// the moment of recommendation.
func (r *run) newDecision(node *models.AgentNode, recommendation string, candidates []string) *models.Decision {
	stats := make([]models.ToolStat, 0, len(candidates))
	for _, name := range candidates {
		stats = append(stats, r.o.registry.StatSnapshot(name))
	}

	return &models.Decision{
		ID:             uuid.NewString(),
		Agent:          node.Name,
		Step:           string(node.Type),
		Recommendation: recommendation,
		Tools:          candidates,
		Stats:          stats,
		Explanations: map[string]string{
			"policy": fmt.Sprintf("recommended %s for %s node %q", recommendation, node.Type, node.Name),
		},
		Severity:  models.SeverityMedium,
		Status:    models.DecisionPending,
		CreatedAt: time.Now().UTC(),
	}
}

// saveTrace records the node's execution outcome best-effort.
func (r *run) saveTrace(ctx context.Context, node *models.AgentNode, decisionID string, out dispatchOutcome) {
	status := models.TraceSuccess
	if !out.result.Success {
		status = models.TraceFailure
	}

	t := &models.ExecutionTrace{
		ID:         uuid.NewString(),
		RunID:      r.id,
		WorkflowID: r.workflow.ID,
		NodeID:     node.ID,
		Status:     status,
		Details: map[string]any{
			"decision_id": decisionID,
			"actor":       out.actor,
			"tool":        out.choice,
			"output":      out.result.Output,
		},
		Timestamp: time.Now().UTC(),
	}
	if out.result.ErrorMessage != "" {
		t.Details["error"] = out.result.ErrorMessage
	}

	if err := r.o.store.SaveTrace(ctx, t); err != nil {
		r.o.logger.Warn("trace write skipped", "node", node.ID, "error", err)
	}
}
