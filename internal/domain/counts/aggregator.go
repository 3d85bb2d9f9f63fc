package counts

import (
	"sync"

	"jtrac/internal/domain/item"
)

// Delta describes the counter movement caused by one item mutation. Deltas
// from unrelated items commute: applying them in any order yields the same
// counters.
type Delta struct {
	SpaceID          uint
	PreviousAssignee *uint
	NewAssignee      *uint
	PreviousLogger   *uint
	NewLogger        *uint
	// WasCounted / IsCounted carry the item's membership in the space total
	// before and after the mutation.
	WasCounted bool
	IsCounted  bool
}

// CreationDelta is the delta for a freshly stored item.
func CreationDelta(it *item.Item) Delta {
	loggedBy := it.LoggedByID()
	return Delta{
		SpaceID:     it.SpaceID(),
		NewAssignee: it.AssignedToID(),
		NewLogger:   &loggedBy,
		WasCounted:  false,
		IsCounted:   true,
	}
}

// RemovalDelta is the negative delta emitted before an item is removed.
func RemovalDelta(it *item.Item) Delta {
	loggedBy := it.LoggedByID()
	return Delta{
		SpaceID:          it.SpaceID(),
		PreviousAssignee: it.AssignedToID(),
		PreviousLogger:   &loggedBy,
		WasCounted:       true,
		IsCounted:        false,
	}
}

// ReassignmentDelta is the delta for an assignee change; the space total is
// untouched.
func ReassignmentDelta(spaceID uint, previousAssignee, newAssignee *uint) Delta {
	return Delta{
		SpaceID:          spaceID,
		PreviousAssignee: previousAssignee,
		NewAssignee:      newAssignee,
		WasCounted:       true,
		IsCounted:        true,
	}
}

type spaceUser struct {
	spaceID uint
	userID  uint
}

// Aggregator keeps the materialized counters. All movements are plain integer
// adds under one mutex, so concurrent deltas from different items merge
// without losing updates.
type Aggregator struct {
	mu       sync.RWMutex
	totals   map[uint]int
	logged   map[spaceUser]int
	assigned map[spaceUser]int
}

func NewAggregator() *Aggregator {
	return &Aggregator{
		totals:   make(map[uint]int),
		logged:   make(map[spaceUser]int),
		assigned: make(map[spaceUser]int),
	}
}

// Apply folds one delta into the counters.
func (a *Aggregator) Apply(d Delta) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if d.WasCounted != d.IsCounted {
		if d.IsCounted {
			a.totals[d.SpaceID]++
		} else {
			a.totals[d.SpaceID]--
		}
	}

	a.move(a.assigned, d.SpaceID, d.PreviousAssignee, d.NewAssignee)
	a.move(a.logged, d.SpaceID, d.PreviousLogger, d.NewLogger)
}

func (a *Aggregator) move(counters map[spaceUser]int, spaceID uint, from, to *uint) {
	if from != nil && to != nil && *from == *to {
		return
	}
	if from != nil {
		counters[spaceUser{spaceID, *from}]--
	}
	if to != nil {
		counters[spaceUser{spaceID, *to}]++
	}
}

// SnapshotFor returns a consistent view of the counters for one user over the
// given accessible spaces.
func (a *Aggregator) SnapshotFor(userID uint, spaceIDs []uint) *CountsHolder {
	a.mu.RLock()
	defer a.mu.RUnlock()

	holder := NewCountsHolder()
	for _, spaceID := range spaceIDs {
		holder.Put(spaceID, Counts{
			LoggedByMe:   a.logged[spaceUser{spaceID, userID}],
			AssignedToMe: a.assigned[spaceUser{spaceID, userID}],
			Total:        a.totals[spaceID],
		})
	}
	return holder
}

// Recompute rebuilds every counter from the authoritative item set. It is
// idempotent: running it twice over the same items yields identical counters,
// matching what incremental deltas would have produced in any arrival order.
func (a *Aggregator) Recompute(items []*item.Item) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.totals = make(map[uint]int)
	a.logged = make(map[spaceUser]int)
	a.assigned = make(map[spaceUser]int)

	for _, it := range items {
		a.totals[it.SpaceID()]++
		a.logged[spaceUser{it.SpaceID(), it.LoggedByID()}]++
		if assignee := it.AssignedToID(); assignee != nil {
			a.assigned[spaceUser{it.SpaceID(), *assignee}]++
		}
	}
}
