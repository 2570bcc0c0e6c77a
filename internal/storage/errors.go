// ABOUTME: Error values returned by the assistant store
// ABOUTME: Durable failures always wrap ErrStoreUnavailable
package storage

import (
	"errors"
	"fmt"
)

var (
	// ErrStoreUnavailable is wrapped around every durable-storage failure
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrNotFound is returned when a requested entity does not exist
	ErrNotFound = errors.New("not found")
)

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
}
