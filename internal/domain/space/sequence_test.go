package space

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jtrac/internal/shared/errors"
)

func TestSequenceAllocator_StrictlyIncreasingPerSpace(t *testing.T) {
	a := NewInMemorySequenceAllocator()

	for want := uint(1); want <= 5; want++ {
		got, err := a.Next(1)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	// An independent space starts from one.
	got, err := a.Next(2)
	require.NoError(t, err)
	assert.Equal(t, uint(1), got)

	assert.Equal(t, uint(5), a.Current(1))
	assert.Equal(t, uint(1), a.Current(2))
	assert.Equal(t, uint(0), a.Current(99), "unknown space has issued nothing")
}

func TestSequenceAllocator_ConcurrentAllocationsAreUnique(t *testing.T) {
	a := NewInMemorySequenceAllocator()

	const goroutines = 50
	const perGoroutine = 20

	results := make(chan uint, goroutines*perGoroutine)
	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perGoroutine; i++ {
				n, err := a.Next(1)
				assert.NoError(t, err)
				results <- n
			}
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[uint]bool)
	for n := range results {
		assert.False(t, seen[n], "sequence number %d issued twice", n)
		seen[n] = true
	}
	assert.Len(t, seen, goroutines*perGoroutine)
	assert.Equal(t, uint(goroutines*perGoroutine), a.Current(1))
}

func TestSequenceAllocator_ExhaustionGuard(t *testing.T) {
	a := NewInMemorySequenceAllocator()
	a.Restore(1, maxSequence)

	n, err := a.Next(1)
	require.Error(t, err)
	assert.True(t, errors.IsSequenceExhaustionError(err))
	assert.Equal(t, uint(0), n)
	assert.Equal(t, uint(maxSequence), a.Current(1), "counter never wraps")
}

func TestSequenceAllocator_RestoreNeverMovesBackwards(t *testing.T) {
	a := NewInMemorySequenceAllocator()
	a.Restore(1, 10)
	a.Restore(1, 5)

	n, err := a.Next(1)
	require.NoError(t, err)
	assert.Equal(t, uint(11), n)
}
