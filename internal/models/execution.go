// ABOUTME: Execution tracks one run of a named operation
// ABOUTME: Lifecycle is queued -> running -> completed|failed, each step once
package models

import "time"

// ExecutionState is the lifecycle state of an execution
type ExecutionState string

const (
	StateQueued    ExecutionState = "queued"
	StateRunning   ExecutionState = "running"
	StateCompleted ExecutionState = "completed"
	StateFailed    ExecutionState = "failed"
)

// Terminal reports whether no further transitions are possible
func (s ExecutionState) Terminal() bool {
	return s == StateCompleted || s == StateFailed
}

// Execution represents one launched operation
type Execution struct {
	ID         string         `json:"execution_id"`
	Operation  string         `json:"operation"`
	Params     map[string]any `json:"params"`
	State      ExecutionState `json:"state"`
	Result     map[string]any `json:"result,omitempty"`
	Error      string         `json:"error,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	StartedAt  time.Time      `json:"started_at,omitempty"`
	FinishedAt time.Time      `json:"finished_at,omitempty"`
}

// Clone returns a copy whose maps are not shared with e
func (e Execution) Clone() Execution {
	out := e
	out.Params = cloneMap(e.Params)
	out.Result = cloneMap(e.Result)
	return out
}

// SearchRecord is one entry of the search history
type SearchRecord struct {
	Query     string    `json:"query"`
	Sources   []string  `json:"sources"`
	Timestamp time.Time `json:"timestamp"`
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
