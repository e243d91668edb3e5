package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"bplcommander/middleware"
	"bplcommander/models"
	"bplcommander/utils"
)

// ProjectAction is the closed set of commands accepted by the projects
// collection endpoint.
type ProjectAction string

const (
	ProjectActionCreate            ProjectAction = "create"
	ProjectActionUpdate            ProjectAction = "update"
	ProjectActionDelete            ProjectAction = "delete"
	ProjectActionAssign            ProjectAction = "assign"
	ProjectActionUnassign          ProjectAction = "unassign"
	ProjectActionMilestone         ProjectAction = "milestone"
	ProjectActionCompleteMilestone ProjectAction = "completeMilestone"
	ProjectActionComment           ProjectAction = "comment"
	ProjectActionComplete          ProjectAction = "complete"
	ProjectActionActivate          ProjectAction = "activate"
	ProjectActionHold              ProjectAction = "hold"
	ProjectActionCancel            ProjectAction = "cancel"
)

type projectCommand struct {
	Action ProjectAction   `json:"action"`
	ID     uint            `json:"id"`
	Data   json.RawMessage `json:"data"`
}

// HandleProjectAction dispatches the RPC-over-POST command envelope to a
// typed handler; unknown actions are a validation error.
func (pc *ProjectController) HandleProjectAction(c *fiber.Ctx) error {
	var cmd projectCommand
	if err := c.BodyParser(&cmd); err != nil {
		return utils.NewValidationError("Invalid request body")
	}

	actor := middleware.CurrentUser(c)

	switch cmd.Action {
	case ProjectActionCreate:
		return pc.handleCreate(c, actor, cmd.Data)
	case ProjectActionUpdate:
		return pc.handleUpdate(c, actor, cmd.ID, cmd.Data)
	case ProjectActionDelete:
		return pc.handleDelete(c, actor, cmd.ID)
	case ProjectActionAssign:
		return pc.handleAssign(c, actor, cmd.ID, cmd.Data)
	case ProjectActionUnassign:
		return pc.handleUnassign(c, actor, cmd.ID, cmd.Data)
	case ProjectActionMilestone:
		return pc.handleAddMilestone(c, actor, cmd.ID, cmd.Data)
	case ProjectActionCompleteMilestone:
		return pc.handleCompleteMilestone(c, actor, cmd.ID, cmd.Data)
	case ProjectActionComment:
		return pc.handleComment(c, actor, cmd.ID, cmd.Data)
	case ProjectActionComplete:
		return pc.handleStatusChange(c, actor, cmd.ID, models.ProjectCompleted)
	case ProjectActionActivate:
		return pc.handleStatusChange(c, actor, cmd.ID, models.ProjectActive)
	case ProjectActionHold:
		return pc.handleStatusChange(c, actor, cmd.ID, models.ProjectOnHold)
	case ProjectActionCancel:
		return pc.handleStatusChange(c, actor, cmd.ID, models.ProjectCancelled)
	default:
		return utils.NewValidationError("Invalid action specified")
	}
}

// loadProject fetches a project for mutation; missing projects are 404.
func (pc *ProjectController) loadProject(projectID uint) (*models.Project, error) {
	if projectID == 0 {
		return nil, utils.NewValidationError("Project ID is required")
	}
	var project models.Project
	if err := pc.DB.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewNotFoundError("Project not found")
		}
		return nil, utils.FromStoreError(err)
	}
	return &project, nil
}

// snapshotAndBump writes the ProjectVersion row for the project's current
// state and increments the version counter on the in-memory copy. Always call
// this before saving a mutation; the snapshot must precede the row change.
// There is no compare-and-swap guard here: two concurrent updates can race
// past each other, which matches the store contract.
func (pc *ProjectController) snapshotAndBump(actor *models.User, project *models.Project) error {
	version := models.ProjectVersion{
		ProjectID: project.ID,
		Version:   project.Version,
		ChangedBy: actor.ID,
		Snapshot:  models.SnapshotOf(project),
	}
	if err := pc.DB.Create(&version).Error; err != nil {
		return utils.FromStoreError(err)
	}
	project.Version++
	return nil
}

type createProjectData struct {
	Title          string               `json:"title" validate:"required,min=2"`
	Description    string               `json:"description"`
	Priority       models.Priority      `json:"priority"`
	Status         models.ProjectStatus `json:"status"`
	ManagerID      *uint                `json:"manager_id"`
	EstimatedHours int                  `json:"estimated_hours" validate:"omitempty,gte=0"`
	BudgetAmount   float64              `json:"budget_amount" validate:"omitempty,gte=0"`
	BudgetCurrency string               `json:"budget_currency"`
	Timeline       string               `json:"timeline"`
	Tags           []string             `json:"tags"`
}

func (pc *ProjectController) handleCreate(c *fiber.Ctx, actor *models.User, data json.RawMessage) error {
	if !utils.CanManageProjects(actor) {
		return utils.NewForbiddenError("You do not have permission to manage projects")
	}

	var req createProjectData
	if err := json.Unmarshal(data, &req); err != nil {
		return utils.NewValidationError("Invalid action data", err.Error())
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.NewValidationError("Validation failed", err.Error())
	}

	managerID := actor.ID
	if req.ManagerID != nil {
		managerID = *req.ManagerID
		var manager models.User
		if err := pc.DB.First(&manager, managerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NewValidationError("Invalid manager ID")
			}
			return utils.FromStoreError(err)
		}
	}

	if req.Priority == "" {
		req.Priority = models.PriorityMedium
	}
	if req.BudgetCurrency == "" {
		req.BudgetCurrency = "USD"
	}
	if req.Tags == nil {
		req.Tags = []string{}
	}

	project := models.Project{
		Title:          req.Title,
		Description:    req.Description,
		Status:         models.ProjectActive,
		Priority:       req.Priority,
		ManagerID:      managerID,
		EstimatedHours: req.EstimatedHours,
		BudgetAmount:   req.BudgetAmount,
		BudgetCurrency: req.BudgetCurrency,
		Timeline:       req.Timeline,
		Tags:           req.Tags,
		Version:        1,
	}
	if err := pc.DB.Create(&project).Error; err != nil {
		return utils.FromStoreError(err)
	}

	utils.LogActivity(pc.DB, actor.ID, models.ActionProjectCreated, models.EntityProject, project.ID, &project.ID,
		fmt.Sprintf("Created project: %s", project.Title))

	return utils.Created(c, project, "Project created successfully")
}

type updateProjectData struct {
	Title          *string          `json:"title" validate:"omitempty,min=2"`
	Description    *string          `json:"description"`
	Priority       *models.Priority `json:"priority"`
	EstimatedHours *int             `json:"estimated_hours" validate:"omitempty,gte=0"`
	BudgetAmount   *float64         `json:"budget_amount" validate:"omitempty,gte=0"`
	BudgetCurrency *string          `json:"budget_currency"`
	Timeline       *string          `json:"timeline"`
	Tags           []string         `json:"tags"`
}

func (pc *ProjectController) handleUpdate(c *fiber.Ctx, actor *models.User, projectID uint, data json.RawMessage) error {
	project, err := pc.loadProject(projectID)
	if err != nil {
		return err
	}
	if !utils.CanMutateProject(actor, project) {
		return utils.NewForbiddenError("You do not have permission to modify this project")
	}

	var req updateProjectData
	if err := json.Unmarshal(data, &req); err != nil {
		return utils.NewValidationError("Invalid action data", err.Error())
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.NewValidationError("Validation failed", err.Error())
	}

	if err := pc.snapshotAndBump(actor, project); err != nil {
		return err
	}

	if req.Title != nil {
		project.Title = *req.Title
	}
	if req.Description != nil {
		project.Description = *req.Description
	}
	if req.Priority != nil {
		project.Priority = *req.Priority
	}
	if req.EstimatedHours != nil {
		project.EstimatedHours = *req.EstimatedHours
	}
	if req.BudgetAmount != nil {
		project.BudgetAmount = *req.BudgetAmount
	}
	if req.BudgetCurrency != nil {
		project.BudgetCurrency = *req.BudgetCurrency
	}
	if req.Timeline != nil {
		project.Timeline = *req.Timeline
	}
	if req.Tags != nil {
		project.Tags = req.Tags
	}

	if err := pc.DB.Save(project).Error; err != nil {
		return utils.FromStoreError(err)
	}

	utils.LogActivity(pc.DB, actor.ID, models.ActionProjectUpdated, models.EntityProject, project.ID, &project.ID,
		fmt.Sprintf("Updated project: %s (v%d)", project.Title, project.Version))

	return utils.Respond(c, fiber.StatusOK, project, "Project updated successfully", nil)
}

func (pc *ProjectController) handleDelete(c *fiber.Ctx, actor *models.User, projectID uint) error {
	project, err := pc.loadProject(projectID)
	if err != nil {
		return err
	}
	if !utils.CanDeleteProject(actor, project) {
		return utils.NewForbiddenError("You do not have permission to delete this project")
	}

	if err := pc.DB.Delete(project).Error; err != nil {
		return utils.FromStoreError(err)
	}

	utils.LogActivity(pc.DB, actor.ID, models.ActionProjectDeleted, models.EntityProject, project.ID, &project.ID,
		fmt.Sprintf("Deleted project: %s", project.Title))

	return utils.Respond(c, fiber.StatusOK, nil, "Project deleted successfully", nil)
}

type assignData struct {
	EmployeeID  uint   `json:"employee_id" validate:"required"`
	Involvement int    `json:"involvement_percentage" validate:"required,gte=1,lte=100"`
	Role        string `json:"role"`
}

func (pc *ProjectController) handleAssign(c *fiber.Ctx, actor *models.User, projectID uint, data json.RawMessage) error {
	project, err := pc.loadProject(projectID)
	if err != nil {
		return err
	}
	if !utils.CanMutateProject(actor, project) {
		return utils.NewForbiddenError("You do not have permission to modify this project")
	}

	var req assignData
	if err := json.Unmarshal(data, &req); err != nil {
		return utils.NewValidationError("Invalid action data", err.Error())
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.NewValidationError("Validation failed", err.Error())
	}

	var employee models.User
	if err := pc.DB.First(&employee, req.EmployeeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NewNotFoundError("Employee not found")
		}
		return utils.FromStoreError(err)
	}
	if !employee.IsActive {
		return utils.NewValidationError("Cannot assign a deactivated user")
	}

	assignment, err := pc.Accountant.TryAssign(actor.ID, project, &employee, req.Involvement, req.Role)
	if err != nil {
		return err
	}

	return utils.Created(c, assignment, "Employee assigned successfully")
}

type unassignData struct {
	EmployeeID uint `json:"employee_id" validate:"required"`
}

func (pc *ProjectController) handleUnassign(c *fiber.Ctx, actor *models.User, projectID uint, data json.RawMessage) error {
	project, err := pc.loadProject(projectID)
	if err != nil {
		return err
	}
	if !utils.CanMutateProject(actor, project) {
		return utils.NewForbiddenError("You do not have permission to modify this project")
	}

	var req unassignData
	if err := json.Unmarshal(data, &req); err != nil {
		return utils.NewValidationError("Invalid action data", err.Error())
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.NewValidationError("Validation failed", err.Error())
	}

	var assignment models.ProjectAssignment
	err = pc.DB.
		Where("project_id = ? AND employee_id = ?", project.ID, req.EmployeeID).
		First(&assignment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NewNotFoundError("Assignment not found")
		}
		return utils.FromStoreError(err)
	}

	if err := pc.DB.Delete(&assignment).Error; err != nil {
		return utils.FromStoreError(err)
	}

	utils.LogActivity(pc.DB, actor.ID, models.ActionEmployeeUnassigned, models.EntityAssignment, assignment.ID, &project.ID,
		fmt.Sprintf("Removed employee %d from project %q", req.EmployeeID, project.Title))

	return utils.Respond(c, fiber.StatusOK, nil, "Employee unassigned successfully", nil)
}

type milestoneData struct {
	Title       string     `json:"title" validate:"required,min=2"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"due_date"`
}

func (pc *ProjectController) handleAddMilestone(c *fiber.Ctx, actor *models.User, projectID uint, data json.RawMessage) error {
	project, err := pc.loadProject(projectID)
	if err != nil {
		return err
	}
	if !utils.CanMutateProject(actor, project) {
		return utils.NewForbiddenError("You do not have permission to modify this project")
	}

	var req milestoneData
	if err := json.Unmarshal(data, &req); err != nil {
		return utils.NewValidationError("Invalid action data", err.Error())
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.NewValidationError("Validation failed", err.Error())
	}

	milestone := models.Milestone{
		ProjectID:   project.ID,
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
	}
	if err := pc.DB.Create(&milestone).Error; err != nil {
		return utils.FromStoreError(err)
	}

	utils.LogActivity(pc.DB, actor.ID, models.ActionMilestoneAdded, models.EntityMilestone, milestone.ID, &project.ID,
		fmt.Sprintf("Added milestone %q to project %q", milestone.Title, project.Title))

	return utils.Created(c, milestone, "Milestone added successfully")
}

type completeMilestoneData struct {
	MilestoneID uint `json:"milestone_id" validate:"required"`
}

func (pc *ProjectController) handleCompleteMilestone(c *fiber.Ctx, actor *models.User, projectID uint, data json.RawMessage) error {
	project, err := pc.loadProject(projectID)
	if err != nil {
		return err
	}
	if !utils.CanMutateProject(actor, project) {
		return utils.NewForbiddenError("You do not have permission to modify this project")
	}

	var req completeMilestoneData
	if err := json.Unmarshal(data, &req); err != nil {
		return utils.NewValidationError("Invalid action data", err.Error())
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.NewValidationError("Validation failed", err.Error())
	}

	var milestone models.Milestone
	err = pc.DB.
		Where("id = ? AND project_id = ?", req.MilestoneID, project.ID).
		First(&milestone).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NewNotFoundError("Milestone not found")
		}
		return utils.FromStoreError(err)
	}

	// CompletedAt is set only on the transition to completed.
	if !milestone.Completed {
		now := time.Now()
		milestone.Completed = true
		milestone.CompletedAt = &now
		if err := pc.DB.Save(&milestone).Error; err != nil {
			return utils.FromStoreError(err)
		}

		utils.LogActivity(pc.DB, actor.ID, models.ActionMilestoneCompleted, models.EntityMilestone, milestone.ID, &project.ID,
			fmt.Sprintf("Completed milestone %q on project %q", milestone.Title, project.Title))
	}

	return utils.Respond(c, fiber.StatusOK, milestone, "Milestone completed", nil)
}

type commentData struct {
	Content string `json:"content" validate:"required,min=1"`
}

func (pc *ProjectController) handleComment(c *fiber.Ctx, actor *models.User, projectID uint, data json.RawMessage) error {
	if projectID == 0 {
		return utils.NewValidationError("Project ID is required")
	}

	var project models.Project
	err := pc.DB.Preload("Assignments").First(&project, projectID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NewNotFoundError("Project not found")
		}
		return utils.FromStoreError(err)
	}
	if !utils.HasProjectVisibility(actor, &project) {
		return utils.NewNotFoundError("Project not found")
	}

	var req commentData
	if err := json.Unmarshal(data, &req); err != nil {
		return utils.NewValidationError("Invalid action data", err.Error())
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.NewValidationError("Validation failed", err.Error())
	}

	comment := models.Comment{
		ProjectID: project.ID,
		UserID:    actor.ID,
		Content:   req.Content,
	}
	if err := pc.DB.Create(&comment).Error; err != nil {
		return utils.FromStoreError(err)
	}

	utils.LogActivity(pc.DB, actor.ID, models.ActionCommentAdded, models.EntityComment, comment.ID, &project.ID,
		fmt.Sprintf("Commented on project %q", project.Title))

	return utils.Created(c, comment, "Comment added successfully")
}

func (pc *ProjectController) handleStatusChange(c *fiber.Ctx, actor *models.User, projectID uint, status models.ProjectStatus) error {
	project, err := pc.loadProject(projectID)
	if err != nil {
		return err
	}
	if !utils.CanMutateProject(actor, project) {
		return utils.NewForbiddenError("You do not have permission to modify this project")
	}

	if project.Status == status {
		return utils.Respond(c, fiber.StatusOK, project, "Project status unchanged", nil)
	}

	// A status change is an update like any other: snapshot first, then bump.
	if err := pc.snapshotAndBump(actor, project); err != nil {
		return err
	}
	project.Status = status
	if err := pc.DB.Save(project).Error; err != nil {
		return utils.FromStoreError(err)
	}

	action := models.ActionProjectUpdated
	if status == models.ProjectCompleted {
		action = models.ActionProjectCompleted
	}
	utils.LogActivity(pc.DB, actor.ID, action, models.EntityProject, project.ID, &project.ID,
		fmt.Sprintf("Project %q status changed to %s", project.Title, status.Wire()))

	return utils.Respond(c, fiber.StatusOK, project, "Project status updated", nil)
}
