package permission

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jtrac/internal/domain/item"
	"jtrac/internal/domain/metadata"
	"jtrac/internal/domain/space"
	"jtrac/internal/domain/user"
	"jtrac/internal/shared/errors"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

const testSchema = `fields:
  - name: resolution
    label: Resolution
roles:
  - key: ROLE_TESTER
    label: Tester
  - key: ROLE_DEVELOPER
    label: Developer
  - key: ROLE_GUEST
    label: Guest
states:
  - OPEN
  - FIXED
transitions:
  - from: NEW
    to: OPEN
    roles: [ROLE_TESTER, ROLE_GUEST]
  - from: OPEN
    to: FIXED
    roles: [ROLE_DEVELOPER]
    required: [resolution]
  - from: FIXED
    to: CLOSED
    roles: [ROLE_TESTER]
`

func testSpace(t *testing.T) *space.Space {
	t.Helper()
	md, err := metadata.Parse([]byte(testSchema))
	require.NoError(t, err)
	s, err := space.NewSpace("TEST", "Test space", md)
	require.NoError(t, err)
	require.NoError(t, s.SetID(1))
	return s
}

func userWithRole(t *testing.T, id uint, roleKey string) *user.User {
	t.Helper()
	u, err := user.NewUser("user", "User", "user@example.com")
	require.NoError(t, err)
	require.NoError(t, u.SetID(id))
	sid := uint(1)
	require.NoError(t, u.AddSpaceRole(&sid, roleKey))
	return u
}

func globalAdmin(t *testing.T, id uint) *user.User {
	t.Helper()
	u, err := user.NewUser("root", "Root", "root@example.com")
	require.NoError(t, err)
	require.NoError(t, u.SetID(id))
	require.NoError(t, u.AddSpaceRole(nil, metadata.RoleAdmin))
	return u
}

func itemInState(t *testing.T, state metadata.State) *item.Item {
	t.Helper()
	it, err := item.NewItem(1, 10, "item", "")
	require.NoError(t, err)
	require.NoError(t, it.SetID(1))
	require.NoError(t, it.SetSequenceNum(1))
	if state != metadata.StateNew {
		require.NoError(t, it.ApplyTransition(state, 10, nil, ""))
	}
	return it
}

// ---------------------------------------------------------------------------
// PermittedTransitions
// ---------------------------------------------------------------------------

func TestPermittedTransitions(t *testing.T) {
	e := NewEngine()
	s := testSpace(t)

	tests := []struct {
		name  string
		user  *user.User
		state metadata.State
		want  []metadata.State
	}{
		{"tester from NEW", userWithRole(t, 2, "ROLE_TESTER"), metadata.StateNew, []metadata.State{"OPEN"}},
		{"developer from NEW sees nothing", userWithRole(t, 3, "ROLE_DEVELOPER"), metadata.StateNew, nil},
		{"developer from OPEN", userWithRole(t, 3, "ROLE_DEVELOPER"), "OPEN", []metadata.State{"FIXED"}},
		{"admin from OPEN holds every role", globalAdmin(t, 4), "OPEN", []metadata.State{"FIXED"}},
		{"tester from terminal CLOSED", userWithRole(t, 2, "ROLE_TESTER"), metadata.StateClosed, nil},
		{"no grant at all", func() *user.User {
			u, err := user.NewUser("norole", "No Role", "n@example.com")
			require.NoError(t, err)
			require.NoError(t, u.SetID(9))
			return u
		}(), metadata.StateNew, nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			it := itemInState(t, tc.state)
			assert.Equal(t, tc.want, e.PermittedTransitions(tc.user, s, it))
		})
	}
}

// ---------------------------------------------------------------------------
// Guest resolution
// ---------------------------------------------------------------------------

func TestEffectiveRoles_Guest(t *testing.T) {
	e := NewEngine()

	t.Run("guest on guest-allowed space with declared guest role", func(t *testing.T) {
		s := testSpace(t)
		s.AllowGuests()
		assert.Equal(t, []string{metadata.RoleGuest}, e.EffectiveRoles(user.Guest(), s))

		it := itemInState(t, metadata.StateNew)
		assert.Equal(t, []metadata.State{"OPEN"}, e.PermittedTransitions(user.Guest(), s, it))
	})

	t.Run("guest on closed space", func(t *testing.T) {
		s := testSpace(t)
		assert.Empty(t, e.EffectiveRoles(user.Guest(), s))
	})

	t.Run("guest role not declared", func(t *testing.T) {
		md, err := metadata.Parse([]byte(`roles:
  - key: ROLE_TESTER
    label: Tester
transitions:
  - from: NEW
    to: CLOSED
    roles: [ROLE_TESTER]
`))
		require.NoError(t, err)
		s, err := space.NewSpace("NOGUEST", "No guest role", md)
		require.NoError(t, err)
		require.NoError(t, s.SetID(1))
		s.AllowGuests()
		assert.Empty(t, e.EffectiveRoles(user.Guest(), s))
	})
}

// ---------------------------------------------------------------------------
// Authorize
// ---------------------------------------------------------------------------

func TestAuthorize(t *testing.T) {
	e := NewEngine()
	s := testSpace(t)

	t.Run("permitted", func(t *testing.T) {
		it := itemInState(t, metadata.StateNew)
		assert.NoError(t, e.Authorize(userWithRole(t, 2, "ROLE_TESTER"), s, it, "OPEN"))
	})

	t.Run("edge missing from workflow is invalid, not unauthorized", func(t *testing.T) {
		it := itemInState(t, metadata.StateNew)
		err := e.Authorize(userWithRole(t, 2, "ROLE_TESTER"), s, it, "FIXED")
		require.Error(t, err)
		assert.True(t, errors.IsInvalidTransitionError(err))
		assert.False(t, errors.IsUnauthorizedActionError(err))
	})

	t.Run("existing edge without role intersection is unauthorized", func(t *testing.T) {
		it := itemInState(t, "OPEN")
		err := e.Authorize(userWithRole(t, 2, "ROLE_TESTER"), s, it, "FIXED")
		require.Error(t, err)
		assert.True(t, errors.IsUnauthorizedActionError(err))

		we := errors.GetWorkflowError(err)
		require.NotNil(t, we)
		assert.Equal(t, "OPEN", we.FromState)
		assert.Equal(t, "FIXED", we.ToState)
	})

	t.Run("terminal state rejects everything", func(t *testing.T) {
		it := itemInState(t, metadata.StateClosed)
		err := e.Authorize(globalAdmin(t, 4), s, it, "OPEN")
		require.Error(t, err)
		assert.True(t, errors.IsInvalidTransitionError(err))
	})
}

// ---------------------------------------------------------------------------
// RequiredFieldsFor / CanMutate
// ---------------------------------------------------------------------------

func TestRequiredFieldsFor(t *testing.T) {
	e := NewEngine()
	s := testSpace(t)

	assert.Equal(t, []string{"resolution"}, e.RequiredFieldsFor(s, "OPEN", "FIXED"))
	assert.Empty(t, e.RequiredFieldsFor(s, metadata.StateNew, "OPEN"))
	assert.Empty(t, e.RequiredFieldsFor(s, "OPEN", "CLOSED"), "no such edge")
}

func TestCanMutate(t *testing.T) {
	e := NewEngine()
	s := testSpace(t)

	itNew := itemInState(t, metadata.StateNew)
	assert.True(t, e.CanMutate(userWithRole(t, 2, "ROLE_TESTER"), s, itNew))
	assert.False(t, e.CanMutate(userWithRole(t, 3, "ROLE_DEVELOPER"), s, itNew))

	itClosed := itemInState(t, metadata.StateClosed)
	assert.False(t, e.CanMutate(globalAdmin(t, 4), s, itClosed), "terminal state blocks even the admin")
}
