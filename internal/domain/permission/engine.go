// Package permission computes, for a given principal and space, which
// workflow transitions and fields are reachable. The engine is stateless and
// pure: it reads the space's metadata snapshot and the user's grants, and
// never mutates either.
package permission

import (
	"jtrac/internal/domain/item"
	"jtrac/internal/domain/metadata"
	"jtrac/internal/domain/space"
	"jtrac/internal/domain/user"
	"jtrac/internal/shared/errors"
)

type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// EffectiveRoles resolves the principal's roles within a space. A guest
// resolves to the declared guest role on guest-allowed spaces only; a global
// admin holds every declared role; otherwise the explicit grant applies.
func (e *Engine) EffectiveRoles(u *user.User, s *space.Space) []string {
	md := s.Metadata()
	if u.IsGuest() {
		if s.GuestAllowed() && md.HasRole(metadata.RoleGuest) {
			return []string{metadata.RoleGuest}
		}
		return nil
	}
	return u.EffectiveRoles(s.ID(), md.RoleKeys())
}

// PermittedTransitions returns the target states the user may move the item
// to from its current state. A terminal state yields nothing regardless of
// role.
func (e *Engine) PermittedTransitions(u *user.User, s *space.Space, it *item.Item) []metadata.State {
	roles := e.EffectiveRoles(u, s)
	if len(roles) == 0 {
		return nil
	}

	var permitted []metadata.State
	for _, t := range s.Metadata().TransitionsFrom(it.State()) {
		if t.AllowsAnyRole(roles) {
			permitted = append(permitted, t.To())
		}
	}
	return permitted
}

// Authorize checks a concrete transition request. An edge missing from the
// workflow fails InvalidTransition; an existing edge the user's roles do not
// intersect fails Unauthorized. Callers rely on the distinction to render
// different messages.
func (e *Engine) Authorize(u *user.User, s *space.Space, it *item.Item, to metadata.State) error {
	from := it.State()
	t, ok := s.Metadata().TransitionBetween(from, to)
	if !ok {
		return errors.NewInvalidTransitionError(from.String(), to.String())
	}
	roles := e.EffectiveRoles(u, s)
	if !t.AllowsAnyRole(roles) {
		return errors.NewUnauthorizedActionError(from.String(), to.String())
	}
	return nil
}

// RequiredFieldsFor returns the fields that must hold a value before the
// from -> to transition commits, in schema declaration order.
func (e *Engine) RequiredFieldsFor(s *space.Space, from, to metadata.State) []string {
	required, _ := s.Metadata().RequiredFields(from, to)
	return required
}

// CanMutate gates side-channel mutations such as reassignment: the user must
// be able to reach at least one transition from the item's current state,
// i.e. must not be a pure observer.
func (e *Engine) CanMutate(u *user.User, s *space.Space, it *item.Item) bool {
	return len(e.PermittedTransitions(u, s, it)) > 0
}
