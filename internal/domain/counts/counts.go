// Package counts maintains the per-space, per-user dashboard counters and the
// aggregated view across spaces. Counters move by commutative integer deltas
// applied in the same unit of work as the item mutation that caused them; a
// full recompute from the authoritative item set is the defined repair path.
package counts

// Counts is the dashboard summary for one user within one space.
type Counts struct {
	LoggedByMe   int
	AssignedToMe int
	Total        int
}

// CountsHolder aggregates Counts across every space a user can access.
type CountsHolder struct {
	counts map[uint]Counts
}

func NewCountsHolder() *CountsHolder {
	return &CountsHolder{
		counts: make(map[uint]Counts),
	}
}

// Put records the counts for one space.
func (h *CountsHolder) Put(spaceID uint, c Counts) {
	h.counts[spaceID] = c
}

// Counts returns the per-space breakdown keyed by space ID.
func (h *CountsHolder) Counts() map[uint]Counts {
	countsCopy := make(map[uint]Counts, len(h.counts))
	for k, v := range h.counts {
		countsCopy[k] = v
	}
	return countsCopy
}

// For returns the counts of one space.
func (h *CountsHolder) For(spaceID uint) Counts {
	return h.counts[spaceID]
}

// TotalLoggedByMe sums loggedByMe over all spaces.
func (h *CountsHolder) TotalLoggedByMe() int {
	total := 0
	for _, c := range h.counts {
		total += c.LoggedByMe
	}
	return total
}

// TotalAssignedToMe sums assignedToMe over all spaces.
func (h *CountsHolder) TotalAssignedToMe() int {
	total := 0
	for _, c := range h.counts {
		total += c.AssignedToMe
	}
	return total
}

// TotalTotal sums the space totals over all spaces.
func (h *CountsHolder) TotalTotal() int {
	total := 0
	for _, c := range h.counts {
		total += c.Total
	}
	return total
}
