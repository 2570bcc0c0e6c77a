// ABOUTME: Preference is a user setting keyed by (key, category)
// ABOUTME: Values are arbitrary JSON-serializable payloads
package models

import "time"

// DefaultCategory is used when a caller does not name a category
const DefaultCategory = "general"

// Preference represents a single stored user preference
type Preference struct {
	Key         string    `json:"key" yaml:"key"`
	Category    string    `json:"category" yaml:"category"`
	Value       any       `json:"value" yaml:"value"`
	LastUpdated time.Time `json:"last_updated" yaml:"last_updated"`
}
