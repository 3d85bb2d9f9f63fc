package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"jtrac/internal/domain/user"
)

type UserRepositoryImpl struct {
	mu     sync.RWMutex
	users  map[uint]*user.User
	nextID uint
}

func NewUserRepository() user.UserRepository {
	return &UserRepositoryImpl{
		users:  make(map[uint]*user.User),
		nextID: 1,
	}
}

func (r *UserRepositoryImpl) Save(ctx context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, stored := range r.users {
		if stored.LoginName() == u.LoginName() {
			return fmt.Errorf("login name %q is already in use", u.LoginName())
		}
	}

	if u.ID() == 0 {
		if err := u.SetID(r.nextID); err != nil {
			return fmt.Errorf("failed to assign user ID: %w", err)
		}
		r.nextID++
	} else if u.ID() >= r.nextID {
		r.nextID = u.ID() + 1
	}

	r.users[u.ID()] = u.Clone()
	return nil
}

func (r *UserRepositoryImpl) Update(ctx context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[u.ID()]; !ok {
		return fmt.Errorf("user %d does not exist", u.ID())
	}
	r.users[u.ID()] = u.Clone()
	return nil
}

func (r *UserRepositoryImpl) Delete(ctx context.Context, userID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[userID]; !ok {
		return fmt.Errorf("user %d does not exist", userID)
	}
	delete(r.users, userID)
	return nil
}

func (r *UserRepositoryImpl) GetByID(ctx context.Context, userID uint) (*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[userID]
	if !ok {
		return nil, nil
	}
	return u.Clone(), nil
}

func (r *UserRepositoryImpl) GetByLoginName(ctx context.Context, loginName string) (*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.LoginName() == loginName {
			return u.Clone(), nil
		}
	}
	return nil, nil
}

func (r *UserRepositoryImpl) FindBySpace(ctx context.Context, spaceID uint) ([]*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*user.User
	for _, u := range r.users {
		if _, ok := u.RoleFor(spaceID); ok {
			result = append(result, u.Clone())
		}
	}
	sortUsersByID(result)
	return result, nil
}

func (r *UserRepositoryImpl) FindSuperUsers(ctx context.Context) ([]*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*user.User
	for _, u := range r.users {
		if u.IsGlobalAdmin() {
			result = append(result, u.Clone())
		}
	}
	sortUsersByID(result)
	return result, nil
}

func (r *UserRepositoryImpl) BulkRenameSpaceRole(ctx context.Context, spaceID uint, oldKey, newKey string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	renamed := 0
	for _, u := range r.users {
		for _, g := range u.Grants() {
			if g.AppliesTo(spaceID) && g.RoleKey() == oldKey {
				clone := u.Clone()
				for _, cg := range clone.Grants() {
					if cg.AppliesTo(spaceID) && cg.RoleKey() == oldKey {
						if err := cg.Rename(newKey); err != nil {
							return renamed, err
						}
					}
				}
				r.users[u.ID()] = clone
				renamed++
				break
			}
		}
	}
	return renamed, nil
}

func sortUsersByID(users []*user.User) {
	sort.Slice(users, func(i, j int) bool {
		return users[i].ID() < users[j].ID()
	})
}
