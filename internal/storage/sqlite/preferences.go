// ABOUTME: Preference storage operations for SQLite
// ABOUTME: Upserts keyed by (key, category); newest last_updated wins
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/harper/jarvis/internal/models"
)

// PreferenceStore handles preference persistence
type PreferenceStore struct {
	db *DB
}

// NewPreferenceStore creates a new PreferenceStore
func NewPreferenceStore(db *DB) *PreferenceStore {
	return &PreferenceStore{db: db}
}

// Set upserts a preference. It reports whether the row was written; a write
// older than the stored last_updated is ignored and returns false.
func (s *PreferenceStore) Set(pref *models.Preference) (bool, error) {
	encoded, err := json.Marshal(pref.Value)
	if err != nil {
		return false, fmt.Errorf("encode preference value: %w", err)
	}

	updated := pref.LastUpdated
	if updated.IsZero() {
		updated = time.Now()
	}

	res, err := s.db.Exec(`
		INSERT INTO preferences (key, category, value, last_updated)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(key, category) DO UPDATE SET
			value = excluded.value,
			last_updated = excluded.last_updated
		WHERE excluded.last_updated >= preferences.last_updated
	`, pref.Key, pref.Category, string(encoded), updated.UTC())
	if err != nil {
		return false, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Get retrieves a preference, or nil if it does not exist
func (s *PreferenceStore) Get(key, category string) (*models.Preference, error) {
	var (
		pref models.Preference
		raw  string
	)

	err := s.db.QueryRow(`
		SELECT key, category, value, last_updated
		FROM preferences
		WHERE key = ? AND category = ?
	`, key, category).Scan(&pref.Key, &pref.Category, &raw, &pref.LastUpdated)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(raw), &pref.Value); err != nil {
		return nil, fmt.Errorf("decode preference %s/%s: %w", category, key, err)
	}
	return &pref, nil
}

// ListByCategory returns every preference in a category ordered by key.
// An empty category returns all preferences.
func (s *PreferenceStore) ListByCategory(category string) ([]models.Preference, error) {
	query := `SELECT key, category, value, last_updated FROM preferences`
	var args []any
	if category != "" {
		query += ` WHERE category = ?`
		args = append(args, category)
	}
	query += ` ORDER BY category, key`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var prefs []models.Preference
	for rows.Next() {
		var (
			pref models.Preference
			raw  string
		)
		if err := rows.Scan(&pref.Key, &pref.Category, &raw, &pref.LastUpdated); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(raw), &pref.Value); err != nil {
			return nil, fmt.Errorf("decode preference %s/%s: %w", pref.Category, pref.Key, err)
		}
		prefs = append(prefs, pref)
	}
	return prefs, rows.Err()
}
