package user

import (
	"fmt"

	"jtrac/internal/domain/metadata"
)

// UserSpaceRole grants one role key to a user within a space. A nil space
// scope is the global grant: holding RoleAdmin globally confers admin
// authority in every space.
type UserSpaceRole struct {
	id      uint
	userID  uint
	spaceID *uint
	roleKey string
}

func NewUserSpaceRole(userID uint, spaceID *uint, roleKey string) (*UserSpaceRole, error) {
	if len(roleKey) == 0 {
		return nil, fmt.Errorf("role key is required")
	}
	if spaceID == nil && roleKey != metadata.RoleAdmin {
		return nil, fmt.Errorf("only %s may be granted without a space", metadata.RoleAdmin)
	}
	if spaceID != nil && *spaceID == 0 {
		return nil, fmt.Errorf("space ID cannot be zero")
	}
	return &UserSpaceRole{
		userID:  userID,
		spaceID: spaceID,
		roleKey: roleKey,
	}, nil
}

func ReconstructUserSpaceRole(id, userID uint, spaceID *uint, roleKey string) (*UserSpaceRole, error) {
	if id == 0 {
		return nil, fmt.Errorf("user space role ID cannot be zero")
	}
	return &UserSpaceRole{
		id:      id,
		userID:  userID,
		spaceID: spaceID,
		roleKey: roleKey,
	}, nil
}

func (r *UserSpaceRole) ID() uint {
	return r.id
}

func (r *UserSpaceRole) SetID(id uint) error {
	if r.id != 0 {
		return fmt.Errorf("user space role ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("user space role ID cannot be zero")
	}
	r.id = id
	return nil
}

func (r *UserSpaceRole) UserID() uint {
	return r.userID
}

// SpaceID returns the scoped space, nil for a global grant.
func (r *UserSpaceRole) SpaceID() *uint {
	return r.spaceID
}

func (r *UserSpaceRole) RoleKey() string {
	return r.roleKey
}

func (r *UserSpaceRole) IsGlobal() bool {
	return r.spaceID == nil
}

func (r *UserSpaceRole) IsGlobalAdmin() bool {
	return r.spaceID == nil && r.roleKey == metadata.RoleAdmin
}

// AppliesTo reports whether the grant scopes the given space.
func (r *UserSpaceRole) AppliesTo(spaceID uint) bool {
	return r.spaceID != nil && *r.spaceID == spaceID
}

// Rename swaps the role key in place; used by the bulk role rename flow.
func (r *UserSpaceRole) Rename(newKey string) error {
	if len(newKey) == 0 {
		return fmt.Errorf("role key cannot be empty")
	}
	r.roleKey = newKey
	return nil
}
