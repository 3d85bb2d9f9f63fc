package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"jtrac/internal/domain/item"
	"jtrac/internal/shared/errors"
)

type ItemRepositoryImpl struct {
	mu     sync.RWMutex
	items  map[uint]*item.Item
	nextID uint
}

func NewItemRepository() item.ItemRepository {
	return &ItemRepositoryImpl{
		items:  make(map[uint]*item.Item),
		nextID: 1,
	}
}

func (r *ItemRepositoryImpl) Save(ctx context.Context, it *item.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if it.ID() == 0 {
		if err := it.SetID(r.nextID); err != nil {
			return fmt.Errorf("failed to assign item ID: %w", err)
		}
		r.nextID++
	} else if it.ID() >= r.nextID {
		r.nextID = it.ID() + 1
	}

	r.items[it.ID()] = it.Clone()
	return nil
}

// Update rejects a write whose version does not advance past the stored one.
// Two callers that loaded the same snapshot both bump to the same version;
// the second write loses.
func (r *ItemRepositoryImpl) Update(ctx context.Context, it *item.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.items[it.ID()]
	if !ok {
		return fmt.Errorf("item %d does not exist", it.ID())
	}
	if it.Version() <= stored.Version() {
		return errors.NewOptimisticConflictError(
			fmt.Sprintf("item %d was modified concurrently (stored version %d, incoming %d)",
				it.ID(), stored.Version(), it.Version()))
	}

	r.items[it.ID()] = it.Clone()
	return nil
}

func (r *ItemRepositoryImpl) Delete(ctx context.Context, itemID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[itemID]; !ok {
		return fmt.Errorf("item %d does not exist", itemID)
	}
	delete(r.items, itemID)
	return nil
}

func (r *ItemRepositoryImpl) GetByID(ctx context.Context, itemID uint) (*item.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	it, ok := r.items[itemID]
	if !ok {
		return nil, nil
	}
	return it.Clone(), nil
}

func (r *ItemRepositoryImpl) GetBySpaceAndSequence(ctx context.Context, spaceID, sequenceNum uint) (*item.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, it := range r.items {
		if it.SpaceID() == spaceID && it.SequenceNum() == sequenceNum {
			return it.Clone(), nil
		}
	}
	return nil, nil
}

func (r *ItemRepositoryImpl) FindBySpace(ctx context.Context, spaceID uint) ([]*item.Item, error) {
	spaceFilter := item.ItemFilter{SpaceID: &spaceID}
	return r.FindByFilter(ctx, spaceFilter)
}

func (r *ItemRepositoryImpl) FindByFilter(ctx context.Context, filter item.ItemFilter) ([]*item.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*item.Item
	for _, it := range r.items {
		if !matchesFilter(it, filter) {
			continue
		}
		result = append(result, it.Clone())
	}
	sortItemsByID(result)
	return result, nil
}

func (r *ItemRepositoryImpl) FindRelatedTo(ctx context.Context, itemID uint) ([]*item.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*item.Item
	for _, it := range r.items {
		if it.ID() == itemID {
			continue
		}
		for _, rel := range it.Relations() {
			if rel.ToItemID() == itemID {
				result = append(result, it.Clone())
				break
			}
		}
	}
	sortItemsByID(result)
	return result, nil
}

func (r *ItemRepositoryImpl) FindWatchedBy(ctx context.Context, userID uint) ([]*item.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*item.Item
	for _, it := range r.items {
		for _, w := range it.WatcherIDs() {
			if w == userID {
				result = append(result, it.Clone())
				break
			}
		}
	}
	sortItemsByID(result)
	return result, nil
}

// CountHistoryInvolvingUser tallies the creation record of every item the user
// logged plus every transition the user performed.
func (r *ItemRepositoryImpl) CountHistoryInvolvingUser(ctx context.Context, userID uint) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, it := range r.items {
		if it.LoggedByID() == userID {
			count++
		}
		for _, h := range it.History() {
			if h.ActorID() == userID {
				count++
			}
		}
	}
	return count, nil
}

func matchesFilter(it *item.Item, filter item.ItemFilter) bool {
	if filter.SpaceID != nil && it.SpaceID() != *filter.SpaceID {
		return false
	}
	if filter.State != nil && it.State() != *filter.State {
		return false
	}
	if filter.LoggedBy != nil && it.LoggedByID() != *filter.LoggedBy {
		return false
	}
	if filter.AssignedTo != nil {
		assignee := it.AssignedToID()
		if assignee == nil || *assignee != *filter.AssignedTo {
			return false
		}
	}
	return true
}

func sortItemsByID(items []*item.Item) {
	sort.Slice(items, func(i, j int) bool {
		return items[i].ID() < items[j].ID()
	})
}
