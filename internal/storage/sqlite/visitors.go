// ABOUTME: Visitor storage operations for SQLite
// ABOUTME: Handles visitor records, promotion, and atomic visit recording
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/harper/jarvis/internal/models"
)

const visitorColumns = `visitor_id, name, face_signature, first_seen, last_seen, visit_count, known, notes`

// VisitorStore handles visitor persistence
type VisitorStore struct {
	db *DB
}

// NewVisitorStore creates a new VisitorStore
func NewVisitorStore(db *DB) *VisitorStore {
	return &VisitorStore{db: db}
}

// Create inserts a visitor with visit_count 1 and returns its id
func (s *VisitorStore) Create(v *models.Visitor) (int64, error) {
	now := v.FirstSeen
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()

	sig, err := encodeSignature(v.Signature)
	if err != nil {
		return 0, err
	}

	res, err := s.db.Exec(`
		INSERT INTO visitors (name, face_signature, first_seen, last_seen, visit_count, known, notes)
		VALUES (?, ?, ?, ?, 1, ?, ?)
	`, v.Name, sig, now, now, boolToInt(v.Known), nullString(v.Notes))
	if err != nil {
		return 0, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	v.ID = id
	v.FirstSeen = now
	v.LastSeen = now
	v.VisitCount = 1
	return id, nil
}

// Get retrieves a visitor by id, or nil if it does not exist
func (s *VisitorStore) Get(id int64) (*models.Visitor, error) {
	row := s.db.QueryRow(`SELECT `+visitorColumns+` FROM visitors WHERE visitor_id = ?`, id)
	v, err := scanVisitor(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return v, err
}

// FindByName returns the most recently seen visitor with the given name
// (case-insensitive), or nil
func (s *VisitorStore) FindByName(name string) (*models.Visitor, error) {
	row := s.db.QueryRow(`
		SELECT `+visitorColumns+`
		FROM visitors
		WHERE name = ? COLLATE NOCASE
		ORDER BY last_seen DESC, visitor_id DESC
		LIMIT 1
	`, name)
	v, err := scanVisitor(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return v, err
}

// ListKnown returns all visitors flagged as known, ordered by id
func (s *VisitorStore) ListKnown() ([]models.Visitor, error) {
	return s.list(`SELECT ` + visitorColumns + ` FROM visitors WHERE known = 1 ORDER BY visitor_id`)
}

// ListAll returns every visitor ordered by id
func (s *VisitorStore) ListAll() ([]models.Visitor, error) {
	return s.list(`SELECT ` + visitorColumns + ` FROM visitors ORDER BY visitor_id`)
}

// ListWithSignature returns visitors that carry a recognition signature
func (s *VisitorStore) ListWithSignature() ([]models.Visitor, error) {
	return s.list(`SELECT ` + visitorColumns + ` FROM visitors WHERE face_signature IS NOT NULL ORDER BY visitor_id`)
}

func (s *VisitorStore) list(query string, args ...any) ([]models.Visitor, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var visitors []models.Visitor
	for rows.Next() {
		v, err := scanVisitor(rows)
		if err != nil {
			return nil, err
		}
		visitors = append(visitors, *v)
	}
	return visitors, rows.Err()
}

// Update applies the non-nil fields of u. It returns the updated visitor,
// or nil if the id does not exist.
func (s *VisitorStore) Update(id int64, u models.VisitorUpdate) (*models.Visitor, error) {
	var updated *models.Visitor

	err := s.db.WithTx(func(tx *sql.Tx) error {
		current, err := scanVisitor(tx.QueryRow(`SELECT `+visitorColumns+` FROM visitors WHERE visitor_id = ?`, id))
		if err == sql.ErrNoRows {
			return nil
		}
		if err != nil {
			return err
		}

		if u.Name != nil {
			current.Name = *u.Name
		}
		if u.Signature != nil {
			current.Signature = u.Signature
		}
		if u.Known != nil {
			current.Known = *u.Known
		}
		if u.Notes != nil {
			current.Notes = *u.Notes
		}

		sig, err := encodeSignature(current.Signature)
		if err != nil {
			return err
		}

		if _, err := tx.Exec(`
			UPDATE visitors SET name = ?, face_signature = ?, known = ?, notes = ?
			WHERE visitor_id = ?
		`, current.Name, sig, boolToInt(current.Known), nullString(current.Notes), id); err != nil {
			return err
		}

		updated = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// RecordVisit increments the visit count, advances last_seen, and appends a
// visitor_visit event in one transaction. It returns the updated visitor,
// or nil (and no event) if the id does not exist.
func (s *VisitorStore) RecordVisit(id int64, at time.Time) (*models.Visitor, error) {
	at = at.UTC()
	var updated *models.Visitor

	err := s.db.WithTx(func(tx *sql.Tx) error {
		res, err := tx.Exec(`
			UPDATE visitors
			SET visit_count = visit_count + 1,
				last_seen = MAX(last_seen, ?)
			WHERE visitor_id = ?
		`, at, id)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			return nil
		}

		v, err := scanVisitor(tx.QueryRow(`SELECT `+visitorColumns+` FROM visitors WHERE visitor_id = ?`, id))
		if err != nil {
			return err
		}

		ev := &models.Event{
			Type:        models.EventVisitorVisit,
			Timestamp:   at,
			Description: fmt.Sprintf("Visit recorded for %s", v.Name),
			Metadata: map[string]any{
				"visitor_id":   v.ID,
				"visit_count":  v.VisitCount,
				"visitor_name": v.Name,
			},
		}
		if _, err := insertEvent(tx, ev); err != nil {
			return err
		}

		updated = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVisitor(row rowScanner) (*models.Visitor, error) {
	var (
		v     models.Visitor
		sig   sql.NullString
		known int
		notes sql.NullString
	)

	if err := row.Scan(&v.ID, &v.Name, &sig, &v.FirstSeen, &v.LastSeen, &v.VisitCount, &known, &notes); err != nil {
		return nil, err
	}

	if sig.Valid && sig.String != "" {
		if err := json.Unmarshal([]byte(sig.String), &v.Signature); err != nil {
			return nil, fmt.Errorf("decode signature for visitor %d: %w", v.ID, err)
		}
	}
	v.Known = known != 0
	if notes.Valid {
		v.Notes = notes.String
	}
	return &v, nil
}

func encodeSignature(sig []float64) (sql.NullString, error) {
	if sig == nil {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(sig)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("encode signature: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}
