package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// LogEvent records an engine event. Best-effort: callers log and drop the
// returned error rather than failing the surrounding operation.
func (db *DB) LogEvent(ctx context.Context, eventType, message string, metadata map[string]any) error {
	blob, err := json.Marshal(metadata)
	if err != nil {
		blob = []byte("{}")
	}

	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO events (id, type, message, metadata, timestamp)
		VALUES (?, ?, ?, ?, ?)
	`, uuid.NewString(), eventType, message, string(blob), formatTime(time.Now()))
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// Event is a recorded engine event.
type Event struct {
	ID        string
	Type      string
	Message   string
	Metadata  map[string]any
	Timestamp time.Time
}

// RecentEvents returns the newest events, optionally filtered by type.
func (db *DB) RecentEvents(ctx context.Context, eventType string, limit int) ([]*Event, error) {
	if limit <= 0 {
		limit = 50
	}

	query := "SELECT id, type, message, metadata, timestamp FROM events"
	args := []any{}
	if eventType != "" {
		query += " WHERE type = ?"
		args = append(args, eventType)
	}
	query += " ORDER BY timestamp DESC LIMIT ?"
	args = append(args, limit)

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		e := &Event{}
		var metadata, ts string
		if err := rows.Scan(&e.ID, &e.Type, &e.Message, &metadata, &ts); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		json.Unmarshal([]byte(metadata), &e.Metadata)
		if parsed, err := parseTime(ts); err == nil {
			e.Timestamp = parsed
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}
