// ABOUTME: Error types for provider outcomes
// ABOUTME: A ProviderError is isolated to one source's slot in a response
package dispatch

import (
	"errors"
	"fmt"
)

// ErrProviderTimeout marks a source abandoned at the search deadline
var ErrProviderTimeout = errors.New("provider timed out")

// ProviderError wraps a failure raised by one provider
type ProviderError struct {
	Source string
	Err    error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s: %v", e.Source, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
