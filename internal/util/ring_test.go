// ABOUTME: Tests for the bounded history ring
// ABOUTME: Verifies eviction order, Last(n), and concurrent pushes
package util

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRing_EvictsOldest(t *testing.T) {
	r := NewRing[int](3)
	for i := 1; i <= 5; i++ {
		r.Push(i)
	}

	assert.Equal(t, 3, r.Len())
	assert.Equal(t, []int{3, 4, 5}, r.Last(0))
	assert.Equal(t, []int{4, 5}, r.Last(2))
	assert.Equal(t, []int{3, 4, 5}, r.Last(10))
}

func TestRing_Empty(t *testing.T) {
	r := NewRing[string](0)
	assert.Equal(t, 1, r.Cap())
	assert.Empty(t, r.Last(5))
}

func TestRing_ConcurrentPush(t *testing.T) {
	r := NewRing[int](100)

	var wg sync.WaitGroup
	for i := range 250 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Push(i)
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, r.Len())
	assert.Len(t, r.Last(0), 100)
}
