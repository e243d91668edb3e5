package utils

import "bplcommander/models"

// Authorization predicates. All of these are pure functions over the actor and
// the resource; callers translate a false result into 403 — except project
// visibility, which deliberately surfaces as 404 so inaccessible projects
// cannot be confirmed to exist.

// IsManagementRole reports whether the role sits at manager tier or above.
func IsManagementRole(role models.Role) bool {
	switch role {
	case models.RoleAdmin, models.RoleProgramManager, models.RoleRDManager, models.RoleManager:
		return true
	}
	return false
}

// IsElevatedRole reports whether the role is above plain manager: admin,
// program manager or R&D manager.
func IsElevatedRole(role models.Role) bool {
	switch role {
	case models.RoleAdmin, models.RoleProgramManager, models.RoleRDManager:
		return true
	}
	return false
}

// CanAccessUser: admins and management roles see everyone; employees only
// themselves.
func CanAccessUser(actor *models.User, targetUserID uint) bool {
	if actor.Role == models.RoleAdmin {
		return true
	}
	if actor.ID == targetUserID {
		return true
	}
	return IsManagementRole(actor.Role)
}

// CanManageProjects: anyone at manager tier or above.
func CanManageProjects(actor *models.User) bool {
	return IsManagementRole(actor.Role)
}

// CanMutateProject: elevated roles, or the owning manager.
func CanMutateProject(actor *models.User, project *models.Project) bool {
	if IsElevatedRole(actor.Role) {
		return true
	}
	return actor.ID == project.ManagerID
}

// CanDeleteProject is stricter than mutate: rd_manager cannot delete projects
// it does not own.
func CanDeleteProject(actor *models.User, project *models.Project) bool {
	if actor.Role == models.RoleAdmin || actor.Role == models.RoleProgramManager {
		return true
	}
	return actor.ID == project.ManagerID
}

// HasProjectVisibility: elevated roles, the owning manager, or an assigned
// employee. Requires project.Assignments to be loaded.
func HasProjectVisibility(actor *models.User, project *models.Project) bool {
	if IsElevatedRole(actor.Role) {
		return true
	}
	if actor.ID == project.ManagerID {
		return true
	}
	for _, assignment := range project.Assignments {
		if assignment.EmployeeID == actor.ID {
			return true
		}
	}
	return false
}
