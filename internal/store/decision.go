package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/choreohq/choreo/pkg/models"
)

// SaveDecision creates a decision record.
func (db *DB) SaveDecision(ctx context.Context, d *models.Decision) error {
	if d == nil || d.ID == "" {
		return fmt.Errorf("save decision: missing decision id")
	}

	tools, err := json.Marshal(d.Tools)
	if err != nil {
		return fmt.Errorf("marshal tools: %w", err)
	}
	stats, err := json.Marshal(d.Stats)
	if err != nil {
		return fmt.Errorf("marshal stats: %w", err)
	}
	explanations, err := json.Marshal(d.Explanations)
	if err != nil {
		return fmt.Errorf("marshal explanations: %w", err)
	}

	createdAt := d.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO decisions (id, agent, step, recommendation, tools, stats, explanations, severity, status, choice, resolved_by, created_at, resolved_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULL)
	`, d.ID, d.Agent, d.Step, d.Recommendation, string(tools), string(stats), string(explanations),
		string(d.Severity), string(d.Status), nullString(d.Choice), nullString(d.ResolvedBy), formatTime(createdAt))
	if err != nil {
		return fmt.Errorf("insert decision %s: %w", d.ID, err)
	}
	return nil
}

// ResolveDecision transitions a decision to a terminal status. The update is
// a single conditional statement guarded on the current status still being
// pending, so the two resolution paths (execution outcome and policy
// auto-approval) cannot both win; the loser's write is a no-op.
func (db *DB) ResolveDecision(ctx context.Context, id, choice string, status models.DecisionStatus, resolvedBy string) (bool, error) {
	if !status.Terminal() {
		return false, fmt.Errorf("resolve decision %s: %q is not a terminal status", id, status)
	}

	res, err := db.conn.ExecContext(ctx, `
		UPDATE decisions
		SET status = ?, choice = ?, resolved_by = ?, resolved_at = ?
		WHERE id = ? AND status = 'pending'
	`, string(status), choice, resolvedBy, formatTime(time.Now()), id)
	if err != nil {
		return false, fmt.Errorf("resolve decision %s: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("resolve decision %s: %w", id, err)
	}
	return affected > 0, nil
}

// GetDecision reads a single decision by ID.
func (db *DB) GetDecision(ctx context.Context, id string) (*models.Decision, error) {
	row := db.conn.QueryRowContext(ctx, `
		SELECT id, agent, step, recommendation, tools, stats, explanations, severity, status, choice, resolved_by, created_at, resolved_at
		FROM decisions WHERE id = ?
	`, id)

	d, err := scanDecision(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("decision %s: %w", id, ErrNotFound)
	}
	return d, err
}

// PendingDecisions returns the pending decision queue, applying the
// auto-approval policy as a side effect of the read when one is supplied.
func (db *DB) PendingDecisions(ctx context.Context, limit int, severity models.Severity, policy ApprovalPolicy) ([]*models.Decision, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, agent, step, recommendation, tools, stats, explanations, severity, status, choice, resolved_by, created_at, resolved_at
		FROM decisions WHERE status = 'pending'
	`
	args := []any{}
	if severity != "" {
		query += " AND severity = ?"
		args = append(args, string(severity))
	}
	query += " ORDER BY created_at ASC LIMIT ?"
	args = append(args, limit)

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query pending decisions: %w", err)
	}
	defer rows.Close()

	var pending []*models.Decision
	for rows.Next() {
		d, err := scanDecision(rows)
		if err != nil {
			return nil, fmt.Errorf("scan decision: %w", err)
		}
		pending = append(pending, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate decisions: %w", err)
	}

	if policy == nil {
		return pending, nil
	}

	// Auto-approve matching decisions and return only the remainder.
	queue := pending[:0]
	for _, d := range pending {
		if !policy.AutoApprove(d.Severity) {
			queue = append(queue, d)
			continue
		}
		if _, err := db.ResolveDecision(ctx, d.ID, d.Recommendation, models.DecisionAutoApproved, models.ActorPolicy); err != nil {
			// Leave the decision in the manual queue when the write fails.
			queue = append(queue, d)
		}
	}
	return queue, nil
}

// scanner abstracts sql.Row and sql.Rows for scanDecision.
type scanner interface {
	Scan(dest ...any) error
}

func scanDecision(s scanner) (*models.Decision, error) {
	d := &models.Decision{}
	var tools, stats, explanations, severity, status, createdAt string
	var choice, resolvedBy, resolvedAt sql.NullString

	if err := s.Scan(&d.ID, &d.Agent, &d.Step, &d.Recommendation, &tools, &stats, &explanations,
		&severity, &status, &choice, &resolvedBy, &createdAt, &resolvedAt); err != nil {
		return nil, err
	}

	// Blob fields tolerate junk; a corrupt column degrades to empty.
	json.Unmarshal([]byte(tools), &d.Tools)
	json.Unmarshal([]byte(stats), &d.Stats)
	json.Unmarshal([]byte(explanations), &d.Explanations)

	d.Severity = models.Severity(severity)
	d.Status = models.DecisionStatus(status)
	d.Choice = choice.String
	d.ResolvedBy = resolvedBy.String

	if t, err := parseTime(createdAt); err == nil {
		d.CreatedAt = t
	}
	d.ResolvedAt = parseNullableTime(resolvedAt)

	return d, nil
}
