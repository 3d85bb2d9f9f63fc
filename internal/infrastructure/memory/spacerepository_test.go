package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jtrac/internal/domain/metadata"
	"jtrac/internal/domain/space"
)

const testSchema = `roles:
  - key: ROLE_TESTER
    label: Tester
transitions:
  - from: NEW
    to: CLOSED
    roles: [ROLE_TESTER]
`

func saveSpace(t *testing.T, repo space.SpaceRepository, prefixCode string, guestAllowed bool) *space.Space {
	t.Helper()
	md, err := metadata.Parse([]byte(testSchema))
	require.NoError(t, err)
	s, err := space.NewSpace(prefixCode, prefixCode+" space", md)
	require.NoError(t, err)
	if guestAllowed {
		s.AllowGuests()
	}
	require.NoError(t, repo.Save(context.Background(), s))
	return s
}

func TestSpaceRepository_SaveAndLookup(t *testing.T) {
	repo := NewSpaceRepository()
	ctx := context.Background()

	saved := saveSpace(t, repo, "WEB", false)
	assert.Equal(t, uint(1), saved.ID())

	byID, err := repo.GetByID(ctx, saved.ID())
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, "WEB", byID.PrefixCode())

	byPrefix, err := repo.GetByPrefixCode(ctx, "WEB")
	require.NoError(t, err)
	require.NotNil(t, byPrefix)
	assert.Equal(t, saved.ID(), byPrefix.ID())

	missing, err := repo.GetByID(ctx, 99)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSpaceRepository_SaveRejectsDuplicatePrefix(t *testing.T) {
	repo := NewSpaceRepository()
	saveSpace(t, repo, "WEB", false)

	md, err := metadata.Parse([]byte(testSchema))
	require.NoError(t, err)
	dup, err := space.NewSpace("WEB", "Another", md)
	require.NoError(t, err)

	require.Error(t, repo.Save(context.Background(), dup))
}

func TestSpaceRepository_UpdateStoresSnapshot(t *testing.T) {
	repo := NewSpaceRepository()
	ctx := context.Background()
	saved := saveSpace(t, repo, "WEB", false)

	loaded, err := repo.GetByID(ctx, saved.ID())
	require.NoError(t, err)
	loaded.AllowGuests()
	require.NoError(t, repo.Update(ctx, loaded))

	again, err := repo.GetByID(ctx, saved.ID())
	require.NoError(t, err)
	assert.True(t, again.GuestAllowed())
}

func TestSpaceRepository_FindWhereGuestAllowed(t *testing.T) {
	repo := NewSpaceRepository()

	saveSpace(t, repo, "OPEN1", true)
	saveSpace(t, repo, "LOCKED", false)
	saveSpace(t, repo, "OPEN2", true)

	guestSpaces, err := repo.FindWhereGuestAllowed(context.Background())
	require.NoError(t, err)
	require.Len(t, guestSpaces, 2)
	assert.Equal(t, "OPEN1", guestSpaces[0].PrefixCode())
	assert.Equal(t, "OPEN2", guestSpaces[1].PrefixCode())
}

func TestSpaceRepository_List(t *testing.T) {
	repo := NewSpaceRepository()
	saveSpace(t, repo, "ONE", false)
	saveSpace(t, repo, "TWO", false)

	all, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
