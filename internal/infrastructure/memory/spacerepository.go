// Package memory provides the in-process persistence collaborators. Aggregates
// are stored as clones so callers never share mutable state with the store.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"jtrac/internal/domain/space"
)

type SpaceRepositoryImpl struct {
	mu     sync.RWMutex
	spaces map[uint]*space.Space
	nextID uint
}

func NewSpaceRepository() space.SpaceRepository {
	return &SpaceRepositoryImpl{
		spaces: make(map[uint]*space.Space),
		nextID: 1,
	}
}

func (r *SpaceRepositoryImpl) Save(ctx context.Context, s *space.Space) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, stored := range r.spaces {
		if stored.PrefixCode() == s.PrefixCode() {
			return fmt.Errorf("prefix code %q is already in use", s.PrefixCode())
		}
	}

	if s.ID() == 0 {
		if err := s.SetID(r.nextID); err != nil {
			return fmt.Errorf("failed to assign space ID: %w", err)
		}
		r.nextID++
	} else if s.ID() >= r.nextID {
		r.nextID = s.ID() + 1
	}

	r.spaces[s.ID()] = s.Clone()
	return nil
}

func (r *SpaceRepositoryImpl) Update(ctx context.Context, s *space.Space) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.spaces[s.ID()]; !ok {
		return fmt.Errorf("space %d does not exist", s.ID())
	}
	r.spaces[s.ID()] = s.Clone()
	return nil
}

func (r *SpaceRepositoryImpl) Delete(ctx context.Context, spaceID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.spaces[spaceID]; !ok {
		return fmt.Errorf("space %d does not exist", spaceID)
	}
	delete(r.spaces, spaceID)
	return nil
}

func (r *SpaceRepositoryImpl) GetByID(ctx context.Context, spaceID uint) (*space.Space, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.spaces[spaceID]
	if !ok {
		return nil, nil
	}
	return s.Clone(), nil
}

func (r *SpaceRepositoryImpl) GetByPrefixCode(ctx context.Context, prefixCode string) (*space.Space, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, s := range r.spaces {
		if s.PrefixCode() == prefixCode {
			return s.Clone(), nil
		}
	}
	return nil, nil
}

func (r *SpaceRepositoryImpl) FindWhereGuestAllowed(ctx context.Context) ([]*space.Space, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*space.Space
	for _, s := range r.spaces {
		if s.GuestAllowed() {
			result = append(result, s.Clone())
		}
	}
	sortSpacesByID(result)
	return result, nil
}

func (r *SpaceRepositoryImpl) List(ctx context.Context) ([]*space.Space, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*space.Space, 0, len(r.spaces))
	for _, s := range r.spaces {
		result = append(result, s.Clone())
	}
	sortSpacesByID(result)
	return result, nil
}

func sortSpacesByID(spaces []*space.Space) {
	sort.Slice(spaces, func(i, j int) bool {
		return spaces[i].ID() < spaces[j].ID()
	})
}
