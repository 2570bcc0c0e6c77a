// ABOUTME: Conversation log storage operations for SQLite
// ABOUTME: Append-only entries, read back newest first
package sqlite

import (
	"database/sql"
	"time"

	"github.com/harper/jarvis/internal/models"
)

// ConversationStore handles conversation log persistence
type ConversationStore struct {
	db *DB
}

// NewConversationStore creates a new ConversationStore
func NewConversationStore(db *DB) *ConversationStore {
	return &ConversationStore{db: db}
}

// Append inserts an entry and fills in its id and timestamp
func (s *ConversationStore) Append(entry *models.ConversationEntry) (int64, error) {
	ts := entry.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	ts = ts.UTC()

	var visitorID sql.NullInt64
	if entry.VisitorID != nil {
		visitorID = sql.NullInt64{Int64: *entry.VisitorID, Valid: true}
	}

	res, err := s.db.Exec(`
		INSERT INTO conversations (timestamp, speaker, message, visitor_id, sentiment)
		VALUES (?, ?, ?, ?, ?)
	`, ts, entry.Speaker, entry.Message, visitorID, nullString(entry.Sentiment))
	if err != nil {
		return 0, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	entry.ID = id
	entry.Timestamp = ts
	return id, nil
}

// History returns up to limit entries, newest first. Equal timestamps are
// ordered by entry id. A non-nil visitorID restricts results to that visitor.
func (s *ConversationStore) History(limit int, visitorID *int64) ([]models.ConversationEntry, error) {
	query := `
		SELECT c.entry_id, c.timestamp, c.speaker, c.message, c.visitor_id, c.sentiment, v.name
		FROM conversations c
		LEFT JOIN visitors v ON v.visitor_id = c.visitor_id`
	var args []any
	if visitorID != nil {
		query += ` WHERE c.visitor_id = ?`
		args = append(args, *visitorID)
	}
	query += ` ORDER BY c.timestamp DESC, c.entry_id DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var entries []models.ConversationEntry
	for rows.Next() {
		var (
			entry     models.ConversationEntry
			visitor   sql.NullInt64
			sentiment sql.NullString
			name      sql.NullString
		)
		if err := rows.Scan(&entry.ID, &entry.Timestamp, &entry.Speaker, &entry.Message,
			&visitor, &sentiment, &name); err != nil {
			return nil, err
		}
		if visitor.Valid {
			id := visitor.Int64
			entry.VisitorID = &id
		}
		if sentiment.Valid {
			entry.Sentiment = sentiment.String
		}
		if name.Valid {
			entry.VisitorName = name.String
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Count returns the total number of logged entries
func (s *ConversationStore) Count() (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM conversations`).Scan(&n)
	return n, err
}
