package space

import "context"

// SpaceRepository is the persistence collaborator contract for spaces. The
// core performs no I/O of its own.
type SpaceRepository interface {
	Save(ctx context.Context, space *Space) error
	Update(ctx context.Context, space *Space) error
	Delete(ctx context.Context, spaceID uint) error
	GetByID(ctx context.Context, spaceID uint) (*Space, error)
	GetByPrefixCode(ctx context.Context, prefixCode string) (*Space, error)
	FindWhereGuestAllowed(ctx context.Context) ([]*Space, error)
	List(ctx context.Context) ([]*Space, error)
}
