// Package user holds the principal aggregate and its space role grants. The
// core only authorizes: authentication belongs to the excluded identity
// collaborator, which hands over an already-resolved User.
package user

import (
	"fmt"
	"time"
)

// GuestLoginName marks the anonymous sentinel principal.
const GuestLoginName = "guest"

type User struct {
	id        uint
	loginName string
	name      string
	email     string
	grants    []*UserSpaceRole
	createdAt time.Time
	updatedAt time.Time
}

func NewUser(loginName, name, email string) (*User, error) {
	if len(loginName) == 0 {
		return nil, fmt.Errorf("login name is required")
	}
	if loginName == GuestLoginName {
		return nil, fmt.Errorf("login name %q is reserved", GuestLoginName)
	}
	if len(loginName) > 50 {
		return nil, fmt.Errorf("login name exceeds maximum length of 50 characters")
	}

	now := time.Now()
	return &User{
		loginName: loginName,
		name:      name,
		email:     email,
		createdAt: now,
		updatedAt: now,
	}, nil
}

func ReconstructUser(
	id uint,
	loginName string,
	name string,
	email string,
	grants []*UserSpaceRole,
	createdAt, updatedAt time.Time,
) (*User, error) {
	if id == 0 {
		return nil, fmt.Errorf("user ID cannot be zero")
	}
	if len(loginName) == 0 {
		return nil, fmt.Errorf("login name is required")
	}

	return &User{
		id:        id,
		loginName: loginName,
		name:      name,
		email:     email,
		grants:    grants,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}, nil
}

// Guest returns the anonymous sentinel user. It carries no grants; the
// permission engine only lets it through on guest-allowed spaces.
func Guest() *User {
	return &User{loginName: GuestLoginName}
}

func (u *User) ID() uint {
	return u.id
}

func (u *User) SetID(id uint) error {
	if u.id != 0 {
		return fmt.Errorf("user ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("user ID cannot be zero")
	}
	u.id = id
	for _, g := range u.grants {
		g.userID = id
	}
	return nil
}

func (u *User) LoginName() string {
	return u.loginName
}

func (u *User) Name() string {
	return u.name
}

func (u *User) Email() string {
	return u.email
}

func (u *User) CreatedAt() time.Time {
	return u.createdAt
}

func (u *User) UpdatedAt() time.Time {
	return u.updatedAt
}

func (u *User) IsGuest() bool {
	return u.loginName == GuestLoginName
}

// Grants returns the user's role grants.
func (u *User) Grants() []*UserSpaceRole {
	grantsCopy := make([]*UserSpaceRole, len(u.grants))
	copy(grantsCopy, u.grants)
	return grantsCopy
}

// AddSpaceRole grants roleKey scoped to spaceID (nil for the global admin
// grant). A user holds at most one role per space.
func (u *User) AddSpaceRole(spaceID *uint, roleKey string) error {
	if u.IsGuest() {
		return fmt.Errorf("guest user cannot hold role grants")
	}
	for _, g := range u.grants {
		if sameScope(g.spaceID, spaceID) {
			return fmt.Errorf("user already holds role %q in this scope", g.roleKey)
		}
	}
	grant, err := NewUserSpaceRole(u.id, spaceID, roleKey)
	if err != nil {
		return err
	}
	u.grants = append(u.grants, grant)
	u.updatedAt = time.Now()
	return nil
}

// RemoveSpaceRole withdraws the grant scoped to spaceID. The grant is owned
// by the user, so removal here never leaves an orphan on the space side.
func (u *User) RemoveSpaceRole(spaceID *uint) error {
	for i, g := range u.grants {
		if sameScope(g.spaceID, spaceID) {
			u.grants = append(u.grants[:i], u.grants[i+1:]...)
			u.updatedAt = time.Now()
			return nil
		}
	}
	return fmt.Errorf("user holds no role in this scope")
}

// RoleFor returns the explicit role key granted for spaceID, if any.
func (u *User) RoleFor(spaceID uint) (string, bool) {
	for _, g := range u.grants {
		if g.AppliesTo(spaceID) {
			return g.roleKey, true
		}
	}
	return "", false
}

// IsGlobalAdmin reports whether the user holds the null-space admin grant.
func (u *User) IsGlobalAdmin() bool {
	for _, g := range u.grants {
		if g.IsGlobalAdmin() {
			return true
		}
	}
	return false
}

// EffectiveRoles resolves the user's roles within a space against the space's
// declared role keys: the explicit grant when present, every declared role
// for a global admin, and nothing otherwise. Guests resolve through the
// permission engine, not here.
func (u *User) EffectiveRoles(spaceID uint, declaredRoleKeys []string) []string {
	if roleKey, ok := u.RoleFor(spaceID); ok {
		return []string{roleKey}
	}
	if u.IsGlobalAdmin() {
		keys := make([]string, len(declaredRoleKeys))
		copy(keys, declaredRoleKeys)
		return keys
	}
	return nil
}

// Clone returns a deep snapshot of the user, grants included.
func (u *User) Clone() *User {
	clone := *u
	clone.grants = make([]*UserSpaceRole, len(u.grants))
	for i, g := range u.grants {
		grantCopy := *g
		if g.spaceID != nil {
			spaceID := *g.spaceID
			grantCopy.spaceID = &spaceID
		}
		clone.grants[i] = &grantCopy
	}
	return &clone
}

func sameScope(a, b *uint) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
