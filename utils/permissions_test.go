package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"bplcommander/models"
)

func userWithRole(id uint, role models.Role) *models.User {
	u := &models.User{Role: role}
	u.ID = id
	return u
}

func TestRoleTiers(t *testing.T) {
	tests := []struct {
		role       models.Role
		management bool
		elevated   bool
	}{
		{models.RoleAdmin, true, true},
		{models.RoleProgramManager, true, true},
		{models.RoleRDManager, true, true},
		{models.RoleManager, true, false},
		{models.RoleEmployee, false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			assert.Equal(t, tt.management, IsManagementRole(tt.role))
			assert.Equal(t, tt.elevated, IsElevatedRole(tt.role))
		})
	}
}

func TestCanAccessUser(t *testing.T) {
	assert.True(t, CanAccessUser(userWithRole(1, models.RoleAdmin), 99))
	assert.True(t, CanAccessUser(userWithRole(1, models.RoleManager), 99))
	assert.True(t, CanAccessUser(userWithRole(1, models.RoleEmployee), 1), "self access")
	assert.False(t, CanAccessUser(userWithRole(1, models.RoleEmployee), 99))
}

func TestCanManageProjects(t *testing.T) {
	assert.True(t, CanManageProjects(userWithRole(1, models.RoleManager)))
	assert.True(t, CanManageProjects(userWithRole(1, models.RoleProgramManager)))
	assert.False(t, CanManageProjects(userWithRole(1, models.RoleEmployee)))
}

func TestCanMutateProject(t *testing.T) {
	project := &models.Project{ManagerID: 5}

	assert.True(t, CanMutateProject(userWithRole(1, models.RoleAdmin), project))
	assert.True(t, CanMutateProject(userWithRole(1, models.RoleRDManager), project))
	assert.True(t, CanMutateProject(userWithRole(5, models.RoleManager), project), "owning manager")
	assert.False(t, CanMutateProject(userWithRole(6, models.RoleManager), project), "other manager")
	assert.True(t, CanMutateProject(userWithRole(5, models.RoleEmployee), project), "ownership wins regardless of role")
	assert.False(t, CanMutateProject(userWithRole(7, models.RoleEmployee), project))
}

func TestCanDeleteProject(t *testing.T) {
	project := &models.Project{ManagerID: 5}

	assert.True(t, CanDeleteProject(userWithRole(1, models.RoleAdmin), project))
	assert.True(t, CanDeleteProject(userWithRole(1, models.RoleProgramManager), project))
	// rd_manager can mutate but not delete what it does not own
	assert.False(t, CanDeleteProject(userWithRole(1, models.RoleRDManager), project))
	assert.True(t, CanDeleteProject(userWithRole(5, models.RoleRDManager), project))
	assert.True(t, CanDeleteProject(userWithRole(5, models.RoleManager), project))
	assert.False(t, CanDeleteProject(userWithRole(6, models.RoleManager), project))
}

func TestHasProjectVisibility(t *testing.T) {
	project := &models.Project{
		ManagerID: 5,
		Assignments: []models.ProjectAssignment{
			{EmployeeID: 10},
			{EmployeeID: 11},
		},
	}

	assert.True(t, HasProjectVisibility(userWithRole(1, models.RoleAdmin), project))
	assert.True(t, HasProjectVisibility(userWithRole(5, models.RoleManager), project), "owner")
	assert.True(t, HasProjectVisibility(userWithRole(10, models.RoleEmployee), project), "assigned")
	assert.False(t, HasProjectVisibility(userWithRole(12, models.RoleEmployee), project))
	assert.False(t, HasProjectVisibility(userWithRole(6, models.RoleManager), project), "unrelated manager")
}
