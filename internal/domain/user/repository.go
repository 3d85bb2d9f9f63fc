package user

import "context"

// UserRepository is the persistence collaborator contract for principals and
// their grants.
type UserRepository interface {
	Save(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) error
	Delete(ctx context.Context, userID uint) error
	GetByID(ctx context.Context, userID uint) (*User, error)
	GetByLoginName(ctx context.Context, loginName string) (*User, error)
	FindBySpace(ctx context.Context, spaceID uint) ([]*User, error)
	FindSuperUsers(ctx context.Context) ([]*User, error)
	// BulkRenameSpaceRole rewrites every grant of oldKey scoped to spaceID to
	// newKey, returning how many grants changed. Runs in the same unit of
	// work as the metadata edit that renamed the role.
	BulkRenameSpaceRole(ctx context.Context, spaceID uint, oldKey, newKey string) (int, error)
}
