package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/choreohq/choreo/pkg/models"
)

// SaveTrace appends one execution trace.
func (db *DB) SaveTrace(ctx context.Context, t *models.ExecutionTrace) error {
	if t == nil || t.ID == "" {
		return fmt.Errorf("save trace: missing trace id")
	}

	details, err := json.Marshal(t.Details)
	if err != nil {
		return fmt.Errorf("marshal trace details: %w", err)
	}

	ts := t.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO traces (id, run_id, workflow_id, node_id, status, details, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, t.ID, t.RunID, t.WorkflowID, t.NodeID, string(t.Status), string(details), formatTime(ts))
	if err != nil {
		return fmt.Errorf("insert trace %s: %w", t.ID, err)
	}
	return nil
}

// TracesByRun returns the traces recorded for one run, oldest first.
func (db *DB) TracesByRun(ctx context.Context, runID string) ([]*models.ExecutionTrace, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, run_id, workflow_id, node_id, status, details, timestamp
		FROM traces WHERE run_id = ? ORDER BY timestamp ASC, id ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query traces for run %s: %w", runID, err)
	}
	defer rows.Close()

	var traces []*models.ExecutionTrace
	for rows.Next() {
		t := &models.ExecutionTrace{}
		var status, details, ts string
		if err := rows.Scan(&t.ID, &t.RunID, &t.WorkflowID, &t.NodeID, &status, &details, &ts); err != nil {
			return nil, fmt.Errorf("scan trace: %w", err)
		}
		t.Status = models.TraceStatus(status)
		json.Unmarshal([]byte(details), &t.Details)
		if parsed, err := parseTime(ts); err == nil {
			t.Timestamp = parsed
		}
		traces = append(traces, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate traces: %w", err)
	}
	return traces, nil
}
