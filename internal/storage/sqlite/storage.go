// ABOUTME: Unified Storage layer that wraps all SQLite stores
// ABOUTME: Durable half of the assistant store; the cache lives one level up
package sqlite

import (
	"database/sql"
	"fmt"
)

// Storage groups the per-table stores over one database
type Storage struct {
	db            *DB
	Preferences   *PreferenceStore
	Visitors      *VisitorStore
	Conversations *ConversationStore
	Events        *EventStore
}

// NewStorage initializes storage at the default database path
func NewStorage() (*Storage, error) {
	return NewStorageWithPath(DefaultDBPath())
}

// NewStorageWithPath initializes storage with a custom database path
func NewStorageWithPath(dbPath string) (*Storage, error) {
	db, err := Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return NewStorageFromDB(db), nil
}

// NewStorageInMemory creates an in-memory storage (for testing)
func NewStorageInMemory() (*Storage, error) {
	db, err := OpenInMemory()
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory database: %w", err)
	}
	return NewStorageFromDB(db), nil
}

// NewStorageFromDB wires the table stores over an already open database
func NewStorageFromDB(db *DB) *Storage {
	return &Storage{
		db:            db,
		Preferences:   NewPreferenceStore(db),
		Visitors:      NewVisitorStore(db),
		Conversations: NewConversationStore(db),
		Events:        NewEventStore(db),
	}
}

// DB returns the underlying database
func (s *Storage) DB() *DB {
	return s.db
}

// Close closes the database connection
func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
