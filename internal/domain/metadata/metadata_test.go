package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// RenameRole
// ---------------------------------------------------------------------------

func TestRenameRole_ProducesNewSnapshot(t *testing.T) {
	md := parseValid(t)

	renamed, err := md.RenameRole("ROLE_TESTER", "ROLE_QA")
	require.NoError(t, err)
	require.NotNil(t, renamed)

	assert.True(t, renamed.HasRole("ROLE_QA"))
	assert.False(t, renamed.HasRole("ROLE_TESTER"))
	assert.Equal(t, []string{"ROLE_QA", "ROLE_DEVELOPER"}, renamed.RoleKeys(), "declaration order survives the rename")

	fromNew := renamed.TransitionsFrom(StateNew)
	require.Len(t, fromNew, 1)
	assert.True(t, fromNew[0].AllowsRole("ROLE_QA"))
	assert.False(t, fromNew[0].AllowsRole("ROLE_TESTER"))

	// The receiver is untouched.
	assert.True(t, md.HasRole("ROLE_TESTER"))
	assert.False(t, md.HasRole("ROLE_QA"))
	assert.True(t, md.TransitionsFrom(StateNew)[0].AllowsRole("ROLE_TESTER"))
}

func TestRenameRole_SharesUnchangedSections(t *testing.T) {
	md := parseValid(t)

	renamed, err := md.RenameRole("ROLE_DEVELOPER", "ROLE_ENGINEER")
	require.NoError(t, err)

	assert.Equal(t, md.States(), renamed.States())
	assert.Len(t, renamed.Fields(), len(md.Fields()))

	edge, ok := renamed.TransitionBetween("OPEN", "FIXED")
	require.True(t, ok)
	assert.Equal(t, []string{"resolution"}, edge.Required())
	assert.True(t, edge.AllowsRole("ROLE_ENGINEER"))
}

func TestRenameRole_Rejections(t *testing.T) {
	md := parseValid(t)

	tests := []struct {
		name   string
		oldKey string
		newKey string
	}{
		{"undeclared old key", "ROLE_GHOST", "ROLE_X"},
		{"new key already declared", "ROLE_TESTER", "ROLE_DEVELOPER"},
		{"new key is reserved", "ROLE_TESTER", RoleAdmin},
		{"empty new key", "ROLE_TESTER", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			renamed, err := md.RenameRole(tc.oldKey, tc.newKey)
			require.Error(t, err)
			assert.Nil(t, renamed)
		})
	}
}

// ---------------------------------------------------------------------------
// Field values
// ---------------------------------------------------------------------------

func TestField_IsValidValue(t *testing.T) {
	md := parseValid(t)

	severity, ok := md.FieldByName("severity")
	require.True(t, ok)
	assert.True(t, severity.IsValidValue("major"))
	assert.False(t, severity.IsValidValue("cosmetic"))

	resolution, ok := md.FieldByName("resolution")
	require.True(t, ok)
	assert.True(t, resolution.IsValidValue("anything goes for text"))
}
