// ABOUTME: Event log storage operations for SQLite
// ABOUTME: Append-only audit records with JSON metadata
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/harper/jarvis/internal/models"
)

// EventStore handles event log persistence
type EventStore struct {
	db *DB
}

// NewEventStore creates a new EventStore
func NewEventStore(db *DB) *EventStore {
	return &EventStore{db: db}
}

// Append inserts an event and fills in its id and timestamp
func (s *EventStore) Append(ev *models.Event) (int64, error) {
	return insertEvent(s.db.Conn(), ev)
}

// List returns up to limit events newest first, optionally filtered by type
func (s *EventStore) List(eventType string, limit int) ([]models.Event, error) {
	query := `SELECT event_id, event_type, timestamp, description, metadata FROM events`
	var args []any
	if eventType != "" {
		query += ` WHERE event_type = ?`
		args = append(args, eventType)
	}
	query += ` ORDER BY timestamp DESC, event_id DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var events []models.Event
	for rows.Next() {
		var (
			ev   models.Event
			meta sql.NullString
		)
		if err := rows.Scan(&ev.ID, &ev.Type, &ev.Timestamp, &ev.Description, &meta); err != nil {
			return nil, err
		}
		if meta.Valid && meta.String != "" {
			if err := json.Unmarshal([]byte(meta.String), &ev.Metadata); err != nil {
				return nil, fmt.Errorf("decode metadata for event %d: %w", ev.ID, err)
			}
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

// insertEvent writes ev through q, which may be the connection or an open transaction
func insertEvent(q execer, ev *models.Event) (int64, error) {
	ts := ev.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	ts = ts.UTC()

	var meta sql.NullString
	if len(ev.Metadata) > 0 {
		data, err := json.Marshal(ev.Metadata)
		if err != nil {
			return 0, fmt.Errorf("encode event metadata: %w", err)
		}
		meta = sql.NullString{String: string(data), Valid: true}
	}

	res, err := q.Exec(`
		INSERT INTO events (event_type, timestamp, description, metadata)
		VALUES (?, ?, ?, ?)
	`, ev.Type, ts, ev.Description, meta)
	if err != nil {
		return 0, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	ev.ID = id
	ev.Timestamp = ts
	return id, nil
}
