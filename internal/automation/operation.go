// ABOUTME: Operation describes a named unit of work and its required parameters
// ABOUTME: Params are checked against RequiredParams before dispatch
package automation

import (
	"context"
	"fmt"
)

// Params are the named arguments of an operation
type Params map[string]any

// Result is a handler's structured outcome
type Result map[string]any

// Handler performs an operation
type Handler func(ctx context.Context, params Params) (Result, error)

// Operation is a registered, executable task
type Operation struct {
	Name           string   `json:"name"`
	Title          string   `json:"title,omitempty"`
	Description    string   `json:"description,omitempty"`
	RequiredParams []string `json:"required_params,omitempty"`
	Handler        Handler  `json:"-"`
}

// missingParam returns the first required key absent from params
func (op Operation) missingParam(params Params) (string, bool) {
	for _, key := range op.RequiredParams {
		if _, ok := params[key]; !ok {
			return key, true
		}
	}
	return "", false
}

// String returns p[key] formatted as text, or "" when absent
func (p Params) String(key string) string {
	v, ok := p[key]
	if !ok || v == nil {
		return ""
	}
	return fmt.Sprint(v)
}
