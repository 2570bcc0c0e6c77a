// ABOUTME: Event is an append-only audit record of system activity
// ABOUTME: Defines the event type names written by the assistant
package models

import "time"

// Event types
const (
	EventSystemStart     = "system_start"
	EventSystemStop      = "system_stop"
	EventWakeWord        = "wake_word_detected"
	EventVisitorDetected = "visitor_detected"
	EventVisitorVisit    = "visitor_visit"
	EventCommandReceived = "command_received"
	EventTaskCompleted   = "task_completed"
	EventTaskFailed      = "task_failed"
)

// Event represents a logged system event
type Event struct {
	ID          int64          `json:"event_id" yaml:"event_id"`
	Type        string         `json:"event_type" yaml:"event_type"`
	Timestamp   time.Time      `json:"timestamp" yaml:"timestamp"`
	Description string         `json:"description" yaml:"description"`
	Metadata    map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}
