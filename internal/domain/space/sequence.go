package space

import (
	"fmt"
	"math"
	"sync"

	"jtrac/internal/shared/errors"
)

// SequenceAllocator issues the per-space monotonically increasing reference
// number for new items. Numbers are never reused, even when the item creation
// that requested one later fails: an occasional gap beats a double allocation.
type SequenceAllocator interface {
	// Next returns the next sequence number for the space with atomic
	// increment-and-read semantics.
	Next(spaceID uint) (uint, error)
	// Current returns the highest number issued so far, zero if none.
	Current(spaceID uint) uint
}

// maxSequence is a guard rail far below the uint range; hitting it means the
// counter was corrupted, not that a space logged four billion items.
const maxSequence = math.MaxUint32

// InMemorySequenceAllocator keeps one counter per space under a single mutex.
// Concurrent creations never observe the same number.
type InMemorySequenceAllocator struct {
	mu       sync.Mutex
	counters map[uint]uint
}

func NewInMemorySequenceAllocator() *InMemorySequenceAllocator {
	return &InMemorySequenceAllocator{
		counters: make(map[uint]uint),
	}
}

func (a *InMemorySequenceAllocator) Next(spaceID uint) (uint, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	current := a.counters[spaceID]
	if current >= maxSequence {
		return 0, errors.NewSequenceExhaustionError(fmt.Sprintf("space %d reached sequence %d", spaceID, current))
	}
	current++
	a.counters[spaceID] = current
	return current, nil
}

func (a *InMemorySequenceAllocator) Current(spaceID uint) uint {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.counters[spaceID]
}

// Restore seeds a space's counter from persisted state. It refuses to move a
// counter backwards so already issued numbers stay burned.
func (a *InMemorySequenceAllocator) Restore(spaceID uint, current uint) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if current > a.counters[spaceID] {
		a.counters[spaceID] = current
	}
}
