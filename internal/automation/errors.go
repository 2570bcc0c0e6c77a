// ABOUTME: Error types for task execution and routines
// ABOUTME: ValidationError is reported synchronously and never retried
package automation

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation matches every *ValidationError via errors.Is
	ErrValidation = errors.New("validation failed")

	ErrOperationExists   = errors.New("operation already registered")
	ErrRoutineExists     = errors.New("routine already registered")
	ErrExecutionNotFound = errors.New("execution not found")
)

// ValidationError rejects a request before any execution is created
type ValidationError struct {
	Kind   string // "operation" or "routine"
	Name   string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %q: %s", e.Kind, e.Name, e.Reason)
}

// Is lets errors.Is(err, ErrValidation) match
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
