package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"bplcommander/middleware"
	"bplcommander/models"
	"bplcommander/utils"
)

var initiativeFilterColumns = []string{"status", "title", "description"}

var initiativeAssociations = []string{"Assignee", "Creator"}

type InitiativeController struct {
	DB         *gorm.DB
	Logger     *logrus.Entry
	Accountant *utils.WorkloadAccountant
}

func NewInitiativeController(db *gorm.DB) *InitiativeController {
	return &InitiativeController{
		DB:         db,
		Logger:     utils.Logger("initiatives"),
		Accountant: utils.NewWorkloadAccountant(db),
	}
}

// scopeVisible narrows initiatives to what the actor may see: elevated roles
// see everything, everyone else sees what they own or were assigned.
func (ic *InitiativeController) scopeVisible(tx *gorm.DB, actor *models.User) *gorm.DB {
	if utils.IsElevatedRole(actor.Role) {
		return tx
	}
	return tx.Where("assigned_to = ? OR created_by = ?", actor.ID, actor.ID)
}

// GetInitiatives lists initiatives visible to the actor. Supports the generic
// filters plus assignee=<id> and creator=<id>.
func (ic *InitiativeController) GetInitiatives(c *fiber.Ctx) error {
	qc := middleware.QueryFrom(c)
	actor := middleware.CurrentUser(c)

	var base []utils.Condition
	if qc.Assignee != "" {
		if assigneeID, err := strconv.Atoi(qc.Assignee); err == nil {
			base = append(base, utils.Condition{Field: "assigned_to", Op: utils.OpEq, Value: assigneeID})
		}
	}
	if qc.Creator != "" {
		if creatorID, err := strconv.Atoi(qc.Creator); err == nil {
			base = append(base, utils.Condition{Field: "created_by", Op: utils.OpEq, Value: creatorID})
		}
	}
	where := utils.BuildWhereClause(qc.Filters, base)

	scoped := func() *gorm.DB {
		return ic.scopeVisible(where.Apply(ic.DB.Model(&models.Initiative{}), initiativeFilterColumns), actor)
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return utils.FromStoreError(err)
	}

	if qc.Flags.Count {
		return utils.OK(c, fiber.Map{"count": total})
	}

	tx := utils.ApplyIncludes(scoped(), utils.BuildIncludeClause(qc.Include), initiativeAssociations)

	var initiatives []models.Initiative
	err := tx.
		Order("created_at DESC").
		Offset(qc.Pagination.Offset()).
		Limit(qc.Pagination.Limit).
		Find(&initiatives).Error
	if err != nil {
		return utils.FromStoreError(err)
	}

	return utils.Respond(c, fiber.StatusOK, initiatives,
		"", utils.PaginationMeta(total, qc.Pagination.Page, qc.Pagination.Limit))
}

// GetInitiative fetches one initiative; out-of-scope rows read as not found.
func (ic *InitiativeController) GetInitiative(c *fiber.Ctx) error {
	initiativeID, err := c.ParamsInt("id")
	if err != nil || initiativeID < 1 {
		return utils.NewValidationError("Invalid initiative ID")
	}

	qc := middleware.QueryFrom(c)
	actor := middleware.CurrentUser(c)

	tx := utils.ApplyIncludes(ic.DB, utils.BuildIncludeClause(qc.Include), initiativeAssociations)

	var initiative models.Initiative
	if err := tx.First(&initiative, initiativeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NewNotFoundError("Initiative not found")
		}
		return utils.FromStoreError(err)
	}

	if !ic.canSee(actor, &initiative) {
		return utils.NewNotFoundError("Initiative not found")
	}

	return utils.OK(c, initiative)
}

func (ic *InitiativeController) canSee(actor *models.User, initiative *models.Initiative) bool {
	if utils.IsElevatedRole(actor.Role) {
		return true
	}
	return initiative.AssignedTo == actor.ID || initiative.CreatedBy == actor.ID
}

func (ic *InitiativeController) canMutate(actor *models.User, initiative *models.Initiative) bool {
	return utils.IsElevatedRole(actor.Role) || initiative.CreatedBy == actor.ID
}

// InitiativeAction is the closed set of commands accepted by the initiatives
// collection endpoint.
type InitiativeAction string

const (
	InitiativeActionCreate   InitiativeAction = "create"
	InitiativeActionUpdate   InitiativeAction = "update"
	InitiativeActionDelete   InitiativeAction = "delete"
	InitiativeActionComplete InitiativeAction = "complete"
)

type initiativeCommand struct {
	Action InitiativeAction `json:"action"`
	ID     uint             `json:"id"`
	Data   json.RawMessage  `json:"data"`
}

func (ic *InitiativeController) HandleInitiativeAction(c *fiber.Ctx) error {
	var cmd initiativeCommand
	if err := c.BodyParser(&cmd); err != nil {
		return utils.NewValidationError("Invalid request body")
	}

	actor := middleware.CurrentUser(c)

	switch cmd.Action {
	case InitiativeActionCreate:
		return ic.handleCreate(c, actor, cmd.Data)
	case InitiativeActionUpdate:
		return ic.handleUpdate(c, actor, cmd.ID, cmd.Data)
	case InitiativeActionDelete:
		return ic.handleDelete(c, actor, cmd.ID)
	case InitiativeActionComplete:
		return ic.handleComplete(c, actor, cmd.ID)
	default:
		return utils.NewValidationError("Invalid action specified")
	}
}

func (ic *InitiativeController) loadInitiative(initiativeID uint) (*models.Initiative, error) {
	if initiativeID == 0 {
		return nil, utils.NewValidationError("Initiative ID is required")
	}
	var initiative models.Initiative
	if err := ic.DB.First(&initiative, initiativeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewNotFoundError("Initiative not found")
		}
		return nil, utils.FromStoreError(err)
	}
	return &initiative, nil
}

type createInitiativeData struct {
	Title              string `json:"title" validate:"required,min=2"`
	Description        string `json:"description"`
	AssignedTo         uint   `json:"assigned_to" validate:"required"`
	WorkloadPercentage int    `json:"workload_percentage" validate:"required,gte=1,lte=100"`
}

// handleCreate creates an initiative. The over-and-beyond cap is advisory:
// exceeding it is surfaced in the response meta but never blocks creation.
func (ic *InitiativeController) handleCreate(c *fiber.Ctx, actor *models.User, data json.RawMessage) error {
	var req createInitiativeData
	if err := json.Unmarshal(data, &req); err != nil {
		return utils.NewValidationError("Invalid action data", err.Error())
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.NewValidationError("Validation failed", err.Error())
	}

	// Employees may only log over-and-beyond work for themselves.
	if !utils.IsManagementRole(actor.Role) && req.AssignedTo != actor.ID {
		return utils.NewForbiddenError("You can only create initiatives for yourself")
	}

	var assignee models.User
	if err := ic.DB.First(&assignee, req.AssignedTo).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NewNotFoundError("Assignee not found")
		}
		return utils.FromStoreError(err)
	}
	if !assignee.IsActive {
		return utils.NewValidationError("Cannot assign an initiative to a deactivated user")
	}

	initiative := models.Initiative{
		Title:              req.Title,
		Description:        req.Description,
		Status:             models.InitiativeOpen,
		AssignedTo:         req.AssignedTo,
		CreatedBy:          actor.ID,
		WorkloadPercentage: req.WorkloadPercentage,
	}
	if err := ic.DB.Create(&initiative).Error; err != nil {
		return utils.FromStoreError(err)
	}

	utils.LogActivity(ic.DB, actor.ID, models.ActionInitiativeCreated, models.EntityInitiative, initiative.ID, nil,
		fmt.Sprintf("Created initiative: %s", initiative.Title))

	var meta fiber.Map
	if summary, err := ic.Accountant.ComputeCommittedLoad(&assignee); err == nil {
		if summary.OverBeyondAvailable < 0 {
			meta = fiber.Map{
				"warning": fmt.Sprintf("Over-and-beyond load %d%% exceeds cap %d%%",
					summary.OverBeyondWorkload, assignee.OverBeyondCap),
			}
		}
	}

	return utils.Respond(c, fiber.StatusCreated, initiative, "Initiative created successfully", meta)
}

type updateInitiativeData struct {
	Title              *string                  `json:"title" validate:"omitempty,min=2"`
	Description        *string                  `json:"description"`
	Status             *models.InitiativeStatus `json:"status"`
	WorkloadPercentage *int                     `json:"workload_percentage" validate:"omitempty,gte=1,lte=100"`
}

func (ic *InitiativeController) handleUpdate(c *fiber.Ctx, actor *models.User, initiativeID uint, data json.RawMessage) error {
	initiative, err := ic.loadInitiative(initiativeID)
	if err != nil {
		return err
	}
	if !ic.canMutate(actor, initiative) {
		return utils.NewForbiddenError("You do not have permission to modify this initiative")
	}

	var req updateInitiativeData
	if err := json.Unmarshal(data, &req); err != nil {
		return utils.NewValidationError("Invalid action data", err.Error())
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.NewValidationError("Validation failed", err.Error())
	}

	if req.Title != nil {
		initiative.Title = *req.Title
	}
	if req.Description != nil {
		initiative.Description = *req.Description
	}
	if req.WorkloadPercentage != nil {
		initiative.WorkloadPercentage = *req.WorkloadPercentage
	}
	if req.Status != nil {
		ic.applyStatus(initiative, *req.Status)
	}

	if err := ic.DB.Save(initiative).Error; err != nil {
		return utils.FromStoreError(err)
	}

	utils.LogActivity(ic.DB, actor.ID, models.ActionInitiativeUpdated, models.EntityInitiative, initiative.ID, nil,
		fmt.Sprintf("Updated initiative: %s", initiative.Title))

	return utils.Respond(c, fiber.StatusOK, initiative, "Initiative updated successfully", nil)
}

func (ic *InitiativeController) handleDelete(c *fiber.Ctx, actor *models.User, initiativeID uint) error {
	initiative, err := ic.loadInitiative(initiativeID)
	if err != nil {
		return err
	}
	if !ic.canMutate(actor, initiative) {
		return utils.NewForbiddenError("You do not have permission to delete this initiative")
	}

	if err := ic.DB.Delete(initiative).Error; err != nil {
		return utils.FromStoreError(err)
	}

	utils.LogActivity(ic.DB, actor.ID, models.ActionInitiativeDeleted, models.EntityInitiative, initiative.ID, nil,
		fmt.Sprintf("Deleted initiative: %s", initiative.Title))

	return utils.Respond(c, fiber.StatusOK, nil, "Initiative deleted successfully", nil)
}

// handleComplete marks an initiative completed; the assignee may complete
// their own work even when they did not create it.
func (ic *InitiativeController) handleComplete(c *fiber.Ctx, actor *models.User, initiativeID uint) error {
	initiative, err := ic.loadInitiative(initiativeID)
	if err != nil {
		return err
	}
	if !ic.canMutate(actor, initiative) && initiative.AssignedTo != actor.ID {
		return utils.NewForbiddenError("You do not have permission to complete this initiative")
	}

	if initiative.Status != models.InitiativeCompleted {
		ic.applyStatus(initiative, models.InitiativeCompleted)
		if err := ic.DB.Save(initiative).Error; err != nil {
			return utils.FromStoreError(err)
		}

		utils.LogActivity(ic.DB, actor.ID, models.ActionInitiativeComplete, models.EntityInitiative, initiative.ID, nil,
			fmt.Sprintf("Completed initiative: %s", initiative.Title))
	}

	return utils.Respond(c, fiber.StatusOK, initiative, "Initiative completed", nil)
}

// applyStatus sets the status and keeps CompletedAt consistent with it.
func (ic *InitiativeController) applyStatus(initiative *models.Initiative, status models.InitiativeStatus) {
	if status == models.InitiativeCompleted && initiative.Status != models.InitiativeCompleted {
		now := time.Now()
		initiative.CompletedAt = &now
	}
	if status != models.InitiativeCompleted {
		initiative.CompletedAt = nil
	}
	initiative.Status = status
}
