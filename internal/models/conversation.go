// ABOUTME: ConversationEntry is one immutable line of the conversation log
// ABOUTME: Optionally linked to the visitor who was present
package models

import "time"

// Speaker identifiers
const (
	SpeakerUser      = "user"
	SpeakerAssistant = "assistant"
)

// ConversationEntry represents a single logged utterance
type ConversationEntry struct {
	ID          int64     `json:"entry_id" yaml:"entry_id"`
	Timestamp   time.Time `json:"timestamp" yaml:"timestamp"`
	Speaker     string    `json:"speaker" yaml:"speaker"`
	Message     string    `json:"message" yaml:"message"`
	VisitorID   *int64    `json:"visitor_id,omitempty" yaml:"visitor_id,omitempty"`
	VisitorName string    `json:"visitor_name,omitempty" yaml:"visitor_name,omitempty"`
	Sentiment   string    `json:"sentiment,omitempty" yaml:"sentiment,omitempty"`
}

// Newer reports whether e sorts before other in newest-first order.
// Equal timestamps fall back to the insertion sequence (entry id).
func (e ConversationEntry) Newer(other ConversationEntry) bool {
	if e.Timestamp.Equal(other.Timestamp) {
		return e.ID > other.ID
	}
	return e.Timestamp.After(other.Timestamp)
}
