package item

import (
	"context"

	"jtrac/internal/domain/metadata"
)

// ItemRepository is the persistence collaborator contract for items. Update
// must detect concurrent modification through the aggregate's version and
// report it as an OptimisticConflict; the workflow engine relies on that to
// serialize transitions on the same item.
type ItemRepository interface {
	Save(ctx context.Context, item *Item) error
	Update(ctx context.Context, item *Item) error
	Delete(ctx context.Context, itemID uint) error
	GetByID(ctx context.Context, itemID uint) (*Item, error)
	GetBySpaceAndSequence(ctx context.Context, spaceID, sequenceNum uint) (*Item, error)
	FindBySpace(ctx context.Context, spaceID uint) ([]*Item, error)
	FindByFilter(ctx context.Context, filter ItemFilter) ([]*Item, error)
	// FindRelatedTo returns the items holding a relation edge that points at
	// itemID; the removal flow detaches those edges.
	FindRelatedTo(ctx context.Context, itemID uint) ([]*Item, error)
	// FindWatchedBy returns the items the user is watching; removing a user
	// detaches their watches.
	FindWatchedBy(ctx context.Context, userID uint) ([]*Item, error)
	// CountHistoryInvolvingUser counts creation and transition records where
	// the user acted, logged, or was assigned.
	CountHistoryInvolvingUser(ctx context.Context, userID uint) (int, error)
}

type ItemFilter struct {
	SpaceID    *uint
	State      *metadata.State
	LoggedBy   *uint
	AssignedTo *uint
}
