// ABOUTME: Tests for retry utilities including exponential backoff
// ABOUTME: Validates backoff bounds, jitter, and retry termination
package util

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCalculateBackoff_NonPositiveAttempt(t *testing.T) {
	assert.Zero(t, CalculateBackoff(time.Second, 0))
	assert.Zero(t, CalculateBackoff(time.Second, -5))
	assert.Zero(t, CalculateBackoff(0, 3))
}

func TestCalculateBackoff_ExponentialGrowth(t *testing.T) {
	baseDelay := 100 * time.Millisecond

	for attempt := 1; attempt <= 5; attempt++ {
		expected := baseDelay * time.Duration(1<<uint(attempt))
		result := CalculateBackoff(baseDelay, attempt)

		assert.GreaterOrEqual(t, result, expected*3/4, "attempt %d", attempt)
		assert.LessOrEqual(t, result, expected*5/4, "attempt %d", attempt)
	}
}

func TestCalculateBackoff_Caps(t *testing.T) {
	maxAllowed := 37500 * time.Millisecond

	assert.LessOrEqual(t, CalculateBackoff(time.Second, 10), maxAllowed)

	result := CalculateBackoff(time.Millisecond, 100)
	assert.LessOrEqual(t, result, maxAllowed)
	assert.Positive(t, result)
}

func TestCalculateBackoff_Jitter(t *testing.T) {
	seen := map[time.Duration]bool{}
	for range 100 {
		r := CalculateBackoff(time.Second, 2)
		seen[r] = true
		assert.GreaterOrEqual(t, r, 3*time.Second)
		assert.LessOrEqual(t, r, 5*time.Second)
	}
	assert.Greater(t, len(seen), 1, "jitter should vary results")
}

func TestRetry_SucceedsAfterFailures(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 3, time.Millisecond, func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetry_ReturnsLastError(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 2, time.Millisecond, func(context.Context) error {
		calls++
		return errors.New("still down")
	})

	assert.EqualError(t, err, "still down")
	assert.Equal(t, 3, calls)
}

func TestRetry_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Retry(ctx, 5, time.Hour, func(context.Context) error {
		calls++
		cancel()
		return errors.New("boom")
	})

	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}
