package store

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/choreohq/choreo/pkg/models"
)

// SaveWorkflow writes the workflow graph. Definition-time nodes and edges
// are replaced wholesale; learned edges persist across redefinitions so that
// accumulated routing knowledge is not lost when a workflow is re-seeded.
func (db *DB) SaveWorkflow(ctx context.Context, w *models.Workflow) error {
	if w == nil || w.ID == "" {
		return fmt.Errorf("save workflow: missing workflow id")
	}

	return db.transaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO workflows (id, entry) VALUES (?, ?)
			ON CONFLICT(id) DO UPDATE SET entry = excluded.entry
		`, w.ID, w.Entry); err != nil {
			return fmt.Errorf("upsert workflow %s: %w", w.ID, err)
		}

		if _, err := tx.ExecContext(ctx,
			"DELETE FROM nodes WHERE workflow_id = ?", w.ID); err != nil {
			return fmt.Errorf("clear nodes for %s: %w", w.ID, err)
		}
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM edges WHERE workflow_id = ? AND learned = 0", w.ID); err != nil {
			return fmt.Errorf("clear edges for %s: %w", w.ID, err)
		}

		// Deterministic insertion order for reproducible loads.
		ids := make([]string, 0, len(w.Nodes))
		for id := range w.Nodes {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		for _, id := range ids {
			node := w.Nodes[id]
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO nodes (workflow_id, id, name, type) VALUES (?, ?, ?, ?)
			`, w.ID, node.ID, node.Name, string(node.Type)); err != nil {
				return fmt.Errorf("insert node %s: %w", node.ID, err)
			}

			for seq, edge := range node.Next {
				if _, err := tx.ExecContext(ctx, `
					INSERT INTO edges (workflow_id, source, target, probability, condition, learned, uses, seq)
					VALUES (?, ?, ?, ?, ?, 0, ?, ?)
					ON CONFLICT(workflow_id, source, target) DO UPDATE SET
						probability = excluded.probability,
						condition = excluded.condition,
						seq = excluded.seq
				`, w.ID, node.ID, edge.Target, edge.Probability, edge.Condition, edge.Uses, seq); err != nil {
					return fmt.Errorf("insert edge %s->%s: %w", node.ID, edge.Target, err)
				}
			}
		}

		return nil
	})
}

// LoadWorkflow reads the workflow graph including learned edges. A workflow
// that does not exist loads as an empty graph; the caller decides whether to
// substitute a default.
func (db *DB) LoadWorkflow(ctx context.Context, id string) (*models.Workflow, error) {
	w := &models.Workflow{ID: id, Nodes: make(map[string]*models.AgentNode)}

	row := db.conn.QueryRowContext(ctx, "SELECT entry FROM workflows WHERE id = ?", id)
	if err := row.Scan(&w.Entry); err != nil {
		if err == sql.ErrNoRows {
			return w, nil
		}
		return nil, fmt.Errorf("load workflow %s: %w", id, err)
	}

	rows, err := db.conn.QueryContext(ctx,
		"SELECT id, name, type FROM nodes WHERE workflow_id = ? ORDER BY id", id)
	if err != nil {
		return nil, fmt.Errorf("load nodes for %s: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		node := &models.AgentNode{}
		var nodeType string
		if err := rows.Scan(&node.ID, &node.Name, &nodeType); err != nil {
			return nil, fmt.Errorf("scan node: %w", err)
		}
		node.Type = models.AgentType(nodeType)
		w.Nodes[node.ID] = node
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate nodes: %w", err)
	}

	// Definition edges first in definition order, then learned edges.
	edgeRows, err := db.conn.QueryContext(ctx, `
		SELECT source, target, probability, condition, learned, uses
		FROM edges WHERE workflow_id = ?
		ORDER BY learned ASC, seq ASC, target ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("load edges for %s: %w", id, err)
	}
	defer edgeRows.Close()

	for edgeRows.Next() {
		var source string
		var edge models.OutgoingEdge
		var learned int
		if err := edgeRows.Scan(&source, &edge.Target, &edge.Probability, &edge.Condition, &learned, &edge.Uses); err != nil {
			return nil, fmt.Errorf("scan edge: %w", err)
		}
		edge.Learned = learned != 0

		node, ok := w.Nodes[source]
		if !ok {
			// Edge from an unknown node; silently dropped on load, the
			// traversal guard handles the dangling-target case.
			continue
		}
		node.Next = append(node.Next, edge)
	}
	if err := edgeRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate edges: %w", err)
	}

	return w, nil
}
