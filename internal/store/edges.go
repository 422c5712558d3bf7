package store

import (
	"context"
	"fmt"
)

// AddFallbackEdge creates or strengthens a learned edge discovered by the
// similarity fallback. The upsert is a single statement so concurrent
// branches strengthening the same edge accumulate instead of clobbering.
// Probability is clamped to 1.0 to keep the edge weight a valid Bernoulli
// parameter.
func (db *DB) AddFallbackEdge(ctx context.Context, workflowID, from, to string, score float64) error {
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}

	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO edges (workflow_id, source, target, probability, condition, learned, uses, seq)
		VALUES (?, ?, ?, ?, '', 1, 1, 1000000)
		ON CONFLICT(workflow_id, source, target) DO UPDATE SET
			probability = MIN(1.0, probability + excluded.probability),
			uses = uses + 1,
			learned = 1
	`, workflowID, from, to, score)
	if err != nil {
		return fmt.Errorf("add fallback edge %s->%s: %w", from, to, err)
	}
	return nil
}

// Reinforce additively increases the probability of an edge, clamped to 1.0.
func (db *DB) Reinforce(ctx context.Context, workflowID, from, to string, amount float64) error {
	_, err := db.conn.ExecContext(ctx, `
		UPDATE edges SET probability = MIN(1.0, probability + ?)
		WHERE workflow_id = ? AND source = ? AND target = ?
	`, amount, workflowID, from, to)
	if err != nil {
		return fmt.Errorf("reinforce edge %s->%s: %w", from, to, err)
	}
	return nil
}

// Decay multiplicatively decreases the probability of an edge by (1 - amount).
func (db *DB) Decay(ctx context.Context, workflowID, from, to string, amount float64) error {
	_, err := db.conn.ExecContext(ctx, `
		UPDATE edges SET probability = probability * (1.0 - ?)
		WHERE workflow_id = ? AND source = ? AND target = ?
	`, amount, workflowID, from, to)
	if err != nil {
		return fmt.Errorf("decay edge %s->%s: %w", from, to, err)
	}
	return nil
}

// DecayAllLearned multiplies every learned edge's probability by (1 - rate),
// across all workflows. Intended as a periodic maintenance sweep so stale
// learned routes fade out.
func (db *DB) DecayAllLearned(ctx context.Context, rate float64) error {
	if rate < 0 || rate > 1 {
		return fmt.Errorf("decay all learned: rate %v outside [0, 1]", rate)
	}

	_, err := db.conn.ExecContext(ctx, `
		UPDATE edges SET probability = probability * (1.0 - ?) WHERE learned = 1
	`, rate)
	if err != nil {
		return fmt.Errorf("decay learned edges: %w", err)
	}
	return nil
}
