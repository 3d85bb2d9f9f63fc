package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jtrac/internal/domain/item"
	"jtrac/internal/shared/errors"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func uintPtr(id uint) *uint {
	return &id
}

func saveItem(t *testing.T, repo item.ItemRepository, spaceID, seq, loggedBy uint, assignee *uint) *item.Item {
	t.Helper()
	it, err := item.NewItem(spaceID, loggedBy, "item", "")
	require.NoError(t, err)
	require.NoError(t, it.SetSequenceNum(seq))
	if assignee != nil {
		_, err := it.Assign(assignee, loggedBy)
		require.NoError(t, err)
	}
	require.NoError(t, repo.Save(context.Background(), it))
	return it
}

// ---------------------------------------------------------------------------
// CRUD
// ---------------------------------------------------------------------------

func TestItemRepository_SaveAssignsIDs(t *testing.T) {
	repo := NewItemRepository()

	first := saveItem(t, repo, 1, 1, 10, nil)
	second := saveItem(t, repo, 1, 2, 10, nil)

	assert.Equal(t, uint(1), first.ID())
	assert.Equal(t, uint(2), second.ID())
}

func TestItemRepository_GetReturnsDetachedSnapshot(t *testing.T) {
	repo := NewItemRepository()
	ctx := context.Background()
	saved := saveItem(t, repo, 1, 1, 10, nil)

	loaded, err := repo.GetByID(ctx, saved.ID())
	require.NoError(t, err)
	require.NotNil(t, loaded)

	require.NoError(t, loaded.ApplyTransition("OPEN", 10, nil, ""))

	again, err := repo.GetByID(ctx, saved.ID())
	require.NoError(t, err)
	assert.Equal(t, item.InitialState(), again.State(), "mutating a loaded snapshot must not touch the store")
}

func TestItemRepository_GetByID_NotFound(t *testing.T) {
	repo := NewItemRepository()
	it, err := repo.GetByID(context.Background(), 99)
	require.NoError(t, err)
	assert.Nil(t, it)
}

func TestItemRepository_GetBySpaceAndSequence(t *testing.T) {
	repo := NewItemRepository()
	ctx := context.Background()
	saveItem(t, repo, 1, 1, 10, nil)
	want := saveItem(t, repo, 2, 1, 10, nil)

	got, err := repo.GetBySpaceAndSequence(ctx, 2, 1)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want.ID(), got.ID())

	missing, err := repo.GetBySpaceAndSequence(ctx, 1, 99)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestItemRepository_Delete(t *testing.T) {
	repo := NewItemRepository()
	ctx := context.Background()
	saved := saveItem(t, repo, 1, 1, 10, nil)

	require.NoError(t, repo.Delete(ctx, saved.ID()))
	loaded, err := repo.GetByID(ctx, saved.ID())
	require.NoError(t, err)
	assert.Nil(t, loaded)

	require.Error(t, repo.Delete(ctx, saved.ID()))
}

// ---------------------------------------------------------------------------
// Optimistic update
// ---------------------------------------------------------------------------

func TestItemRepository_Update_OptimisticConflict(t *testing.T) {
	repo := NewItemRepository()
	ctx := context.Background()
	saved := saveItem(t, repo, 1, 1, 10, nil)

	// Two actors load the same snapshot.
	first, err := repo.GetByID(ctx, saved.ID())
	require.NoError(t, err)
	second, err := repo.GetByID(ctx, saved.ID())
	require.NoError(t, err)

	require.NoError(t, first.ApplyTransition("OPEN", 10, nil, ""))
	require.NoError(t, repo.Update(ctx, first))

	require.NoError(t, second.ApplyTransition("CLOSED", 11, nil, ""))
	err = repo.Update(ctx, second)
	require.Error(t, err)
	assert.True(t, errors.IsOptimisticConflictError(err))

	// The first write won.
	stored, err := repo.GetByID(ctx, saved.ID())
	require.NoError(t, err)
	assert.Equal(t, "OPEN", stored.State().String())
	require.Len(t, stored.History(), 1)
}

func TestItemRepository_Update_StaleWriteAfterReload(t *testing.T) {
	repo := NewItemRepository()
	ctx := context.Background()
	saved := saveItem(t, repo, 1, 1, 10, nil)

	stale, err := repo.GetByID(ctx, saved.ID())
	require.NoError(t, err)

	fresh, err := repo.GetByID(ctx, saved.ID())
	require.NoError(t, err)
	require.NoError(t, fresh.ApplyTransition("OPEN", 10, nil, ""))
	require.NoError(t, repo.Update(ctx, fresh))

	// A write from the unmodified stale snapshot is also rejected.
	err = repo.Update(ctx, stale)
	require.Error(t, err)
	assert.True(t, errors.IsOptimisticConflictError(err))
}

// ---------------------------------------------------------------------------
// Queries
// ---------------------------------------------------------------------------

func TestItemRepository_FindByFilter(t *testing.T) {
	repo := NewItemRepository()
	ctx := context.Background()

	a := saveItem(t, repo, 1, 1, 10, uintPtr(20))
	b := saveItem(t, repo, 1, 2, 11, nil)
	c := saveItem(t, repo, 2, 1, 10, uintPtr(10))

	all, err := repo.FindByFilter(ctx, item.ItemFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	bySpace, err := repo.FindBySpace(ctx, 1)
	require.NoError(t, err)
	require.Len(t, bySpace, 2)
	assert.Equal(t, a.ID(), bySpace[0].ID())
	assert.Equal(t, b.ID(), bySpace[1].ID())

	byLogger, err := repo.FindByFilter(ctx, item.ItemFilter{LoggedBy: uintPtr(10)})
	require.NoError(t, err)
	assert.Len(t, byLogger, 2)

	byAssignee, err := repo.FindByFilter(ctx, item.ItemFilter{AssignedTo: uintPtr(20)})
	require.NoError(t, err)
	require.Len(t, byAssignee, 1)
	assert.Equal(t, a.ID(), byAssignee[0].ID())

	state := item.InitialState()
	byBoth, err := repo.FindByFilter(ctx, item.ItemFilter{SpaceID: uintPtr(2), State: &state})
	require.NoError(t, err)
	require.Len(t, byBoth, 1)
	assert.Equal(t, c.ID(), byBoth[0].ID())
}

func TestItemRepository_FindRelatedTo(t *testing.T) {
	repo := NewItemRepository()
	ctx := context.Background()

	target := saveItem(t, repo, 1, 1, 10, nil)
	holder := saveItem(t, repo, 1, 2, 10, nil)
	require.NoError(t, holder.AddRelation(target.ID(), item.RelationDependsOn))
	require.NoError(t, repo.Update(ctx, holder))
	saveItem(t, repo, 1, 3, 10, nil)

	related, err := repo.FindRelatedTo(ctx, target.ID())
	require.NoError(t, err)
	require.Len(t, related, 1)
	assert.Equal(t, holder.ID(), related[0].ID())
}

func TestItemRepository_FindWatchedBy(t *testing.T) {
	repo := NewItemRepository()
	ctx := context.Background()

	watched := saveItem(t, repo, 1, 1, 10, nil)
	require.NoError(t, watched.AddWatcher(40))
	require.NoError(t, repo.Update(ctx, watched))
	saveItem(t, repo, 1, 2, 10, nil)

	items, err := repo.FindWatchedBy(ctx, 40)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, watched.ID(), items[0].ID())
}

func TestItemRepository_CountHistoryInvolvingUser(t *testing.T) {
	repo := NewItemRepository()
	ctx := context.Background()

	// User 10 logs two items and transitions one of them twice.
	first := saveItem(t, repo, 1, 1, 10, nil)
	require.NoError(t, first.ApplyTransition("OPEN", 10, nil, ""))
	require.NoError(t, first.ApplyTransition("CLOSED", 10, nil, ""))
	require.NoError(t, repo.Update(ctx, first))
	saveItem(t, repo, 1, 2, 10, nil)

	// User 11 logs one item; user 10 transitions it once.
	third := saveItem(t, repo, 1, 3, 11, nil)
	require.NoError(t, third.ApplyTransition("OPEN", 10, nil, ""))
	require.NoError(t, repo.Update(ctx, third))

	count, err := repo.CountHistoryInvolvingUser(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 5, count, "two creations plus three transitions")

	count, err = repo.CountHistoryInvolvingUser(ctx, 11)
	require.NoError(t, err)
	assert.Equal(t, 1, count, "one creation only")
}
