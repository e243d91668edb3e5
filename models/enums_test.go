package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	role, err := ParseRole("program_manager")
	require.NoError(t, err)
	assert.Equal(t, RoleProgramManager, role)

	role, err = ParseRole("  ADMIN ")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, role)

	_, err = ParseRole("superuser")
	assert.Error(t, err)
}

func TestProjectStatusWireFormat(t *testing.T) {
	t.Run("on-hold maps to ON_HOLD", func(t *testing.T) {
		status, err := ParseProjectStatus("on-hold")
		require.NoError(t, err)
		assert.Equal(t, ProjectOnHold, status)
		assert.Equal(t, "on-hold", status.Wire())
	})

	t.Run("round trip", func(t *testing.T) {
		for _, status := range []ProjectStatus{ProjectActive, ProjectCompleted, ProjectCancelled, ProjectOnHold} {
			parsed, err := ParseProjectStatus(status.Wire())
			require.NoError(t, err)
			assert.Equal(t, status, parsed)
		}
	})

	t.Run("invalid rejected", func(t *testing.T) {
		_, err := ParseProjectStatus("paused")
		assert.Error(t, err)
	})
}

func TestEnumJSON(t *testing.T) {
	t.Run("marshals lower-case", func(t *testing.T) {
		b, err := json.Marshal(ProjectOnHold)
		require.NoError(t, err)
		assert.Equal(t, `"on-hold"`, string(b))

		b, err = json.Marshal(RoleRDManager)
		require.NoError(t, err)
		assert.Equal(t, `"rd_manager"`, string(b))

		b, err = json.Marshal(PriorityCritical)
		require.NoError(t, err)
		assert.Equal(t, `"critical"`, string(b))
	})

	t.Run("unmarshals to storage form", func(t *testing.T) {
		var status ProjectStatus
		require.NoError(t, json.Unmarshal([]byte(`"on-hold"`), &status))
		assert.Equal(t, ProjectOnHold, status)

		var role Role
		require.NoError(t, json.Unmarshal([]byte(`"employee"`), &role))
		assert.Equal(t, RoleEmployee, role)
	})

	t.Run("rejects invalid values", func(t *testing.T) {
		var status ProjectStatus
		assert.Error(t, json.Unmarshal([]byte(`"archived"`), &status))

		var priority Priority
		assert.Error(t, json.Unmarshal([]byte(`"urgent"`), &priority))
	})
}

func TestInitiativeStatus(t *testing.T) {
	status, err := ParseInitiativeStatus("in-progress")
	require.NoError(t, err)
	assert.Equal(t, InitiativeInProgress, status)
	assert.Equal(t, "in-progress", status.Wire())

	_, err = ParseInitiativeStatus("done")
	assert.Error(t, err)
}
