package orchestrator

import (
	"context"

	"github.com/choreohq/choreo/internal/similarity"
	"github.com/choreohq/choreo/internal/tool"
	"github.com/choreohq/choreo/pkg/models"
)

// dispatchOutcome is the final result of the fallback chain for one node.
type dispatchOutcome struct {
	result tool.Result
	// actor is the resolving actor: policy, fallback, vector, or system.
	actor string
	// choice is the tool that produced the result (or the recommendation
	// when everything failed).
	choice string
}

// dispatch runs the tiered fallback chain for a node and resolves its
// decision to a terminal status consistent with the outcome:
//
//  1. the recommended tool               -> approved, actor policy
//  2. remaining tools in registry order  -> approved, actor fallback
//  3. similarity-index nearest neighbor  -> approved, actor vector,
//     plus a learned-edge write-back
//  4. nothing succeeded                  -> rejected, actor system
//
// Tool failure is a data outcome, never an error: the chain consumes every
// failure and always returns an outcome.
func (r *run) dispatch(ctx context.Context, node *models.AgentNode, recommendation, decisionID string) dispatchOutcome {
	o := r.o
	params := tool.Params{Agent: node.Name, Step: string(node.Type)}

	last := tool.Result{ErrorMessage: "no tools registered"}

	// Tier 1: the recommendation.
	if recommendation != "" {
		res := r.invoke(ctx, recommendation, params)
		if res.Success {
			r.resolveDecision(ctx, decisionID, recommendation, models.DecisionApproved, models.ActorPolicy)
			return dispatchOutcome{result: res, actor: models.ActorPolicy, choice: recommendation}
		}
		o.logger.Warn("recommended tool failed", "node", node.ID, "tool", recommendation, "error", res.ErrorMessage)
		last = res
	}

	// Tier 2: strict ordered first-success search over the rest of the
	// registry. No parallel probing; side effects stay bounded.
	for _, name := range o.registry.List() {
		if name == recommendation {
			continue
		}
		res := r.invoke(ctx, name, params)
		if res.Success {
			o.logger.Info("fallback tool succeeded", "node", node.ID, "tool", name)
			r.resolveDecision(ctx, decisionID, name, models.DecisionApproved, models.ActorFallback)
			return dispatchOutcome{result: res, actor: models.ActorFallback, choice: name}
		}
		last = res
	}

	// Tier 3: similarity search over tool-name embeddings.
	if o.index != nil && o.index.Len() > 0 {
		matches := o.index.Search(similarity.Embed(node.Name), 1)
		if len(matches) > 0 {
			best := matches[0]
			o.logger.Info("similarity fallback selected", "node", node.ID, "tool", best.Name, "distance", best.Distance)

			res := r.invoke(ctx, best.Name, params)
			if res.Success {
				r.resolveDecision(ctx, decisionID, best.Name, models.DecisionApproved, models.ActorVector)
				if err := o.feedback.Strengthen(ctx, r.workflow.ID, node.ID, best.Name, best.Score()); err != nil {
					o.logger.Warn("learned edge write-back skipped", "node", node.ID, "tool", best.Name, "error", err)
				}
				return dispatchOutcome{result: res, actor: models.ActorVector, choice: best.Name}
			}
			last = res
		}
	}

	// Tier 4: everything failed.
	o.logger.Warn("all tools failed", "node", node.ID, "error", last.ErrorMessage)
	r.resolveDecision(ctx, decisionID, recommendation, models.DecisionRejected, models.ActorSystem)
	return dispatchOutcome{result: last, actor: models.ActorSystem, choice: recommendation}
}

// invoke executes one tool, folding a missing registration into a failure
// result so the chain treats it like any other failed attempt.
func (r *run) invoke(ctx context.Context, name string, params tool.Params) tool.Result {
	res, err := r.o.registry.Execute(ctx, name, params)
	if err != nil {
		return tool.Result{ErrorMessage: err.Error()}
	}
	return res
}

// resolveDecision applies the terminal transition best-effort. The store
// guards the transition on the status still being pending, so losing to a
// concurrent auto-approval is a quiet no-op.
func (r *run) resolveDecision(ctx context.Context, id, choice string, status models.DecisionStatus, actor string) {
	applied, err := r.o.store.ResolveDecision(ctx, id, choice, status, actor)
	if err != nil {
		r.o.logger.Warn("decision resolution skipped", "decision_id", id, "error", err)
		return
	}
	if !applied {
		r.o.logger.Debug("decision already resolved", "decision_id", id)
	}
}
