// ABOUTME: Visitor represents a person the assistant has seen
// ABOUTME: Tracks visit counts, recognition signature, and known/unknown status
package models

import "time"

// UnknownVisitorName is assigned to visitors detected without a name
const UnknownVisitorName = "Unknown Visitor"

// Visitor represents a recorded visitor
type Visitor struct {
	ID         int64     `json:"visitor_id" yaml:"visitor_id"`
	Name       string    `json:"name" yaml:"name"`
	Signature  []float64 `json:"face_signature,omitempty" yaml:"face_signature,omitempty"`
	FirstSeen  time.Time `json:"first_seen" yaml:"first_seen"`
	LastSeen   time.Time `json:"last_seen" yaml:"last_seen"`
	VisitCount int       `json:"visit_count" yaml:"visit_count"`
	Known      bool      `json:"known" yaml:"known"`
	Notes      string    `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// VisitorUpdate carries optional field changes for a visitor.
// Nil pointers (and a nil Signature) leave the field untouched.
type VisitorUpdate struct {
	Name      *string
	Signature []float64
	Known     *bool
	Notes     *string
}

// Empty reports whether the update changes nothing
func (u VisitorUpdate) Empty() bool {
	return u.Name == nil && u.Signature == nil && u.Known == nil && u.Notes == nil
}
