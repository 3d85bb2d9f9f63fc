package item

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jtrac/internal/domain/metadata"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func newTestItem(t *testing.T) *Item {
	t.Helper()
	it, err := NewItem(1, 10, "Crash on empty input", "details")
	require.NoError(t, err)
	require.NoError(t, it.SetID(1))
	require.NoError(t, it.SetSequenceNum(1))
	return it
}

func userID(id uint) *uint {
	return &id
}

// ---------------------------------------------------------------------------
// Constructors
// ---------------------------------------------------------------------------

func TestNewItem(t *testing.T) {
	it, err := NewItem(1, 10, "Summary", "Detail")
	require.NoError(t, err)

	assert.Equal(t, metadata.StateNew, it.State())
	assert.Equal(t, uint(1), it.SpaceID())
	assert.Equal(t, uint(10), it.LoggedByID())
	assert.Nil(t, it.AssignedToID())
	assert.Equal(t, 1, it.Version())
	assert.Empty(t, it.History())
	assert.Empty(t, it.Relations())
	assert.Empty(t, it.WatcherIDs())
}

func TestNewItem_InvalidInput(t *testing.T) {
	tests := []struct {
		name     string
		spaceID  uint
		loggedBy uint
		summary  string
	}{
		{"zero space", 0, 10, "Summary"},
		{"zero logger", 1, 0, "Summary"},
		{"empty summary", 1, 10, ""},
		{"summary too long", 1, 10, strings.Repeat("s", 201)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			it, err := NewItem(tc.spaceID, tc.loggedBy, tc.summary, "detail")
			require.Error(t, err)
			assert.Nil(t, it)
		})
	}
}

func TestSetSequenceNum_WriteOnce(t *testing.T) {
	it, err := NewItem(1, 10, "Summary", "")
	require.NoError(t, err)

	require.NoError(t, it.SetSequenceNum(5))
	require.Error(t, it.SetSequenceNum(6))
	assert.Equal(t, uint(5), it.SequenceNum())
}

// ---------------------------------------------------------------------------
// Transitions and history
// ---------------------------------------------------------------------------

func TestApplyTransition_AppendsExactlyOneHistoryRecord(t *testing.T) {
	it := newTestItem(t)

	err := it.ApplyTransition("OPEN", 20, map[string]string{"severity": "major"}, "confirmed")
	require.NoError(t, err)

	assert.Equal(t, metadata.State("OPEN"), it.State())
	assert.Equal(t, 2, it.Version())

	history := it.History()
	require.Len(t, history, 1)
	assert.Equal(t, metadata.StateNew, history[0].FromState())
	assert.Equal(t, metadata.State("OPEN"), history[0].ToState())
	assert.Equal(t, uint(20), history[0].ActorID())
	assert.Equal(t, "confirmed", history[0].Comment())
	assert.False(t, history[0].Timestamp().IsZero())

	changes := history[0].FieldChanges()
	require.Contains(t, changes, "severity")
	assert.Equal(t, FieldChange{Old: "", New: "major"}, changes["severity"])
}

func TestApplyTransition_DiffSkipsUnchangedValues(t *testing.T) {
	it := newTestItem(t)
	require.NoError(t, it.SetInitialFieldValues(map[string]string{"severity": "major"}))

	err := it.ApplyTransition("OPEN", 20, map[string]string{"severity": "major", "resolution": "wontfix"}, "")
	require.NoError(t, err)

	changes := it.History()[0].FieldChanges()
	assert.NotContains(t, changes, "severity", "unchanged value must not appear in the diff")
	assert.Equal(t, FieldChange{Old: "", New: "wontfix"}, changes["resolution"])
}

func TestApplyTransition_HistoryOnlyGrows(t *testing.T) {
	it := newTestItem(t)

	require.NoError(t, it.ApplyTransition("OPEN", 20, nil, ""))
	require.NoError(t, it.ApplyTransition("FIXED", 21, nil, ""))
	require.NoError(t, it.ApplyTransition("CLOSED", 20, nil, ""))

	history := it.History()
	require.Len(t, history, 3)
	assert.Equal(t, metadata.StateNew, history[0].FromState())
	assert.Equal(t, metadata.State("FIXED"), history[1].ToState())
	assert.Equal(t, metadata.State("CLOSED"), history[2].ToState())
	assert.Equal(t, 4, it.Version())
}

func TestApplyTransition_RejectsSameState(t *testing.T) {
	it := newTestItem(t)
	err := it.ApplyTransition(metadata.StateNew, 20, nil, "")
	require.Error(t, err)
	assert.Empty(t, it.History())
	assert.Equal(t, 1, it.Version())
}

func TestApplyTransition_GuestActor(t *testing.T) {
	it := newTestItem(t)
	require.NoError(t, it.ApplyTransition("OPEN", 0, nil, "anonymous"))
	assert.Equal(t, uint(0), it.History()[0].ActorID())
}

func TestSetInitialFieldValues_LockedAfterFirstTransition(t *testing.T) {
	it := newTestItem(t)
	require.NoError(t, it.ApplyTransition("OPEN", 20, nil, ""))

	err := it.SetInitialFieldValues(map[string]string{"severity": "minor"})
	require.Error(t, err)
	assert.Empty(t, it.FieldValue("severity"))
}

// ---------------------------------------------------------------------------
// Assignment
// ---------------------------------------------------------------------------

func TestAssign(t *testing.T) {
	it := newTestItem(t)

	previous, err := it.Assign(userID(30), 20)
	require.NoError(t, err)
	assert.Nil(t, previous)
	require.NotNil(t, it.AssignedToID())
	assert.Equal(t, uint(30), *it.AssignedToID())
	assert.Equal(t, 2, it.Version())

	previous, err = it.Assign(userID(31), 20)
	require.NoError(t, err)
	require.NotNil(t, previous)
	assert.Equal(t, uint(30), *previous)

	// Nil clears the assignment.
	previous, err = it.Assign(nil, 20)
	require.NoError(t, err)
	require.NotNil(t, previous)
	assert.Equal(t, uint(31), *previous)
	assert.Nil(t, it.AssignedToID())

	assert.Empty(t, it.History(), "assignment never writes history")
}

// ---------------------------------------------------------------------------
// Relations
// ---------------------------------------------------------------------------

func TestAddRelation(t *testing.T) {
	it := newTestItem(t)

	require.NoError(t, it.AddRelation(2, RelationDependsOn))
	require.NoError(t, it.AddRelation(2, RelationRelatedTo))
	require.NoError(t, it.AddRelation(3, RelationDuplicateOf))

	assert.True(t, it.HasRelationTo(2, RelationDependsOn))
	assert.False(t, it.HasRelationTo(3, RelationDependsOn))
	assert.Len(t, it.Relations(), 3)

	require.Error(t, it.AddRelation(2, RelationDependsOn), "duplicate edge")
	require.Error(t, it.AddRelation(1, RelationDependsOn), "self relation")
	require.Error(t, it.AddRelation(4, RelationType("INSPIRED_BY")), "unknown relation type")
}

func TestDetachRelationsTo(t *testing.T) {
	it := newTestItem(t)
	require.NoError(t, it.AddRelation(2, RelationDependsOn))
	require.NoError(t, it.AddRelation(2, RelationRelatedTo))
	require.NoError(t, it.AddRelation(3, RelationDependsOn))
	versionBefore := it.Version()

	removed := it.DetachRelationsTo(2)
	assert.Equal(t, 2, removed)
	assert.Len(t, it.Relations(), 1)
	assert.True(t, it.HasRelationTo(3, RelationDependsOn))
	assert.Equal(t, versionBefore+1, it.Version())

	assert.Equal(t, 0, it.DetachRelationsTo(99))
	assert.Equal(t, versionBefore+1, it.Version(), "a no-op detach does not bump the version")
}

// ---------------------------------------------------------------------------
// Watchers
// ---------------------------------------------------------------------------

func TestWatchers(t *testing.T) {
	it := newTestItem(t)

	require.NoError(t, it.AddWatcher(40))
	require.NoError(t, it.AddWatcher(41))
	require.NoError(t, it.AddWatcher(40), "re-adding a watcher is a no-op")
	assert.Equal(t, []uint{40, 41}, it.WatcherIDs())

	it.RemoveWatcher(40)
	assert.Equal(t, []uint{41}, it.WatcherIDs())

	it.RemoveWatcher(99)
	assert.Equal(t, []uint{41}, it.WatcherIDs())

	require.Error(t, it.AddWatcher(0))
}

// ---------------------------------------------------------------------------
// Clone
// ---------------------------------------------------------------------------

func TestClone_IsDeep(t *testing.T) {
	it := newTestItem(t)
	require.NoError(t, it.SetInitialFieldValues(map[string]string{"severity": "major"}))
	require.NoError(t, it.AddRelation(2, RelationDependsOn))
	require.NoError(t, it.AddWatcher(40))
	_, err := it.Assign(userID(30), 20)
	require.NoError(t, err)
	require.NoError(t, it.ApplyTransition("OPEN", 20, nil, ""))

	clone := it.Clone()
	require.NoError(t, clone.ApplyTransition("FIXED", 21, map[string]string{"severity": "critical"}, ""))
	clone.RemoveWatcher(40)
	clone.DetachRelationsTo(2)

	assert.Equal(t, metadata.State("OPEN"), it.State())
	assert.Equal(t, "major", it.FieldValue("severity"))
	assert.Len(t, it.History(), 1)
	assert.Equal(t, []uint{40}, it.WatcherIDs())
	assert.Len(t, it.Relations(), 1)
}
