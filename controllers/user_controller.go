package controller

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"bplcommander/middleware"
	"bplcommander/models"
	"bplcommander/utils"
)

// userFilterColumns are the filterable/searchable columns the users table has;
// filters naming anything else are inert.
var userFilterColumns = []string{"role", "department", "name", "email"}

// userAssociations the include resolver may preload on users.
var userAssociations = []string{"Manager", "Subordinates", "ManagedProjects", "Assignments"}

type UserController struct {
	DB         *gorm.DB
	Logger     *logrus.Entry
	Accountant *utils.WorkloadAccountant
}

func NewUserController(db *gorm.DB) *UserController {
	return &UserController{
		DB:         db,
		Logger:     utils.Logger("users"),
		Accountant: utils.NewWorkloadAccountant(db),
	}
}

// UserAction is the closed set of commands accepted by the users collection
// endpoint.
type UserAction string

const (
	UserActionCreate         UserAction = "create"
	UserActionUpdate         UserAction = "update"
	UserActionDelete         UserAction = "delete"
	UserActionActivate       UserAction = "activate"
	UserActionDeactivate     UserAction = "deactivate"
	UserActionUpdateSettings UserAction = "updateSettings"
)

type userCommand struct {
	Action UserAction      `json:"action"`
	ID     uint            `json:"id"`
	Data   json.RawMessage `json:"data"`
}

type userWithWorkload struct {
	models.User
	WorkloadData *utils.WorkloadSummary `json:"workload_data,omitempty"`
}

// GetUsers lists active users with the parsed filters, includes and
// pagination. The workload flag attaches each user's committed-load summary.
func (uc *UserController) GetUsers(c *fiber.Ctx) error {
	qc := middleware.QueryFrom(c)

	where := utils.BuildWhereClause(qc.Filters, []utils.Condition{
		{Field: "is_active", Op: utils.OpEq, Value: true},
	})
	preloads := utils.BuildIncludeClause(qc.Include)

	var total int64
	if err := where.Apply(uc.DB.Model(&models.User{}), userFilterColumns).Count(&total).Error; err != nil {
		return utils.FromStoreError(err)
	}

	tx := where.Apply(uc.DB.Model(&models.User{}), userFilterColumns)
	tx = utils.ApplyIncludes(tx, preloads, userAssociations)

	var users []models.User
	err := tx.
		Order("created_at DESC").
		Offset(qc.Pagination.Offset()).
		Limit(qc.Pagination.Limit).
		Find(&users).Error
	if err != nil {
		return utils.FromStoreError(err)
	}

	result := make([]userWithWorkload, len(users))
	for i := range users {
		result[i] = userWithWorkload{User: users[i]}
		if qc.Flags.Workload {
			summary, err := uc.Accountant.ComputeCommittedLoad(&users[i])
			if err != nil {
				return err
			}
			result[i].WorkloadData = &summary
		}
	}

	return utils.Respond(c, fiber.StatusOK, result, "",
		utils.PaginationMeta(total, qc.Pagination.Page, qc.Pagination.Limit))
}

// GetUser fetches one user. Employees may only access themselves.
func (uc *UserController) GetUser(c *fiber.Ctx) error {
	targetID, err := c.ParamsInt("id")
	if err != nil || targetID < 1 {
		return utils.NewValidationError("Invalid user ID")
	}

	actor := middleware.CurrentUser(c)
	if !utils.CanAccessUser(actor, uint(targetID)) {
		return utils.NewForbiddenError("You do not have access to this user")
	}

	qc := middleware.QueryFrom(c)
	preloads := utils.BuildIncludeClause(qc.Include)

	tx := utils.ApplyIncludes(uc.DB, preloads, userAssociations)

	var user models.User
	if err := tx.First(&user, targetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NewNotFoundError("User not found")
		}
		return utils.FromStoreError(err)
	}

	result := userWithWorkload{User: user}
	if qc.Flags.Workload {
		summary, err := uc.Accountant.ComputeCommittedLoad(&user)
		if err != nil {
			return err
		}
		result.WorkloadData = &summary
	}

	return utils.OK(c, result)
}

// HandleUserAction dispatches the RPC-over-POST command envelope to a typed
// handler; unknown actions are a validation error.
func (uc *UserController) HandleUserAction(c *fiber.Ctx) error {
	var cmd userCommand
	if err := c.BodyParser(&cmd); err != nil {
		return utils.NewValidationError("Invalid request body")
	}

	actor := middleware.CurrentUser(c)

	switch cmd.Action {
	case UserActionCreate:
		return uc.handleCreate(c, actor, cmd.Data)
	case UserActionUpdate:
		return uc.handleUpdate(c, actor, cmd.ID, cmd.Data)
	case UserActionDelete:
		return uc.handleDelete(c, actor, cmd.ID)
	case UserActionActivate:
		return uc.handleSetActive(c, actor, cmd.ID, true)
	case UserActionDeactivate:
		return uc.handleSetActive(c, actor, cmd.ID, false)
	case UserActionUpdateSettings:
		return uc.handleUpdateSettings(c, actor, cmd.ID, cmd.Data)
	default:
		return utils.NewValidationError("Invalid action specified")
	}
}

type createUserData struct {
	Email         string                       `json:"email" validate:"required,email"`
	Password      string                       `json:"password" validate:"required,min=6"`
	Name          string                       `json:"name" validate:"required,min=2"`
	Role          models.Role                  `json:"role" validate:"required"`
	Designation   string                       `json:"designation" validate:"required,min=2"`
	ManagerID     *uint                        `json:"manager_id"`
	Department    *string                      `json:"department"`
	Skills        []string                     `json:"skills"`
	WorkloadCap   int                          `json:"workload_cap" validate:"omitempty,gte=0,lte=100"`
	OverBeyondCap int                          `json:"over_beyond_cap" validate:"omitempty,gte=0,lte=100"`
	Notifications *models.NotificationSettings `json:"notification_settings"`
}

func (uc *UserController) handleCreate(c *fiber.Ctx, actor *models.User, data json.RawMessage) error {
	if !utils.IsManagementRole(actor.Role) {
		return utils.NewForbiddenError("You do not have permission to create users")
	}

	var req createUserData
	if err := json.Unmarshal(data, &req); err != nil {
		return utils.NewValidationError("Invalid action data", err.Error())
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.NewValidationError("Validation failed", err.Error())
	}

	var existing models.User
	if err := uc.DB.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		return utils.NewConflictError("User with this email already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.FromStoreError(err)
	}

	if req.ManagerID != nil {
		if err := utils.ValidateManagerChain(uc.DB, 0, *req.ManagerID); err != nil {
			return err
		}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), 12)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	if req.WorkloadCap == 0 {
		req.WorkloadCap = 100
	}
	if req.OverBeyondCap == 0 {
		req.OverBeyondCap = 20
	}
	settings := models.DefaultNotificationSettings()
	if req.Notifications != nil {
		settings = *req.Notifications
	}
	if req.Skills == nil {
		req.Skills = []string{}
	}

	user := models.User{
		Email:                req.Email,
		PasswordHash:         string(hashed),
		Name:                 req.Name,
		Role:                 req.Role,
		Designation:          req.Designation,
		ManagerID:            req.ManagerID,
		Department:           req.Department,
		Skills:               req.Skills,
		WorkloadCap:          req.WorkloadCap,
		OverBeyondCap:        req.OverBeyondCap,
		NotificationSettings: settings,
		IsActive:             true,
	}
	if err := uc.DB.Create(&user).Error; err != nil {
		return utils.FromStoreError(err)
	}

	utils.LogActivity(uc.DB, actor.ID, models.ActionUserCreated, models.EntityUser, user.ID, nil,
		fmt.Sprintf("Created user: %s (%s)", user.Name, user.Email))

	return utils.Created(c, user, "User created successfully")
}

type updateUserData struct {
	Name          *string                      `json:"name"`
	Designation   *string                      `json:"designation"`
	ManagerID     *uint                        `json:"manager_id"`
	Department    *string                      `json:"department"`
	Skills        []string                     `json:"skills"`
	WorkloadCap   *int                         `json:"workload_cap" validate:"omitempty,gte=0,lte=100"`
	OverBeyondCap *int                         `json:"over_beyond_cap" validate:"omitempty,gte=0,lte=100"`
	Avatar        *string                      `json:"avatar"`
	PhoneNumber   *string                      `json:"phone_number"`
	Timezone      *string                      `json:"timezone"`
	Currency      *string                      `json:"preferred_currency"`
	Notifications *models.NotificationSettings `json:"notification_settings"`
}

func (uc *UserController) handleUpdate(c *fiber.Ctx, actor *models.User, userID uint, data json.RawMessage) error {
	if !utils.CanAccessUser(actor, userID) {
		return utils.NewForbiddenError("You do not have access to this user")
	}

	var req updateUserData
	if err := json.Unmarshal(data, &req); err != nil {
		return utils.NewValidationError("Invalid action data", err.Error())
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.NewValidationError("Validation failed", err.Error())
	}

	var user models.User
	if err := uc.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NewNotFoundError("User not found")
		}
		return utils.FromStoreError(err)
	}

	if req.ManagerID != nil {
		if err := utils.ValidateManagerChain(uc.DB, user.ID, *req.ManagerID); err != nil {
			return err
		}
		user.ManagerID = req.ManagerID
	}
	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Designation != nil {
		user.Designation = *req.Designation
	}
	if req.Department != nil {
		user.Department = req.Department
	}
	if req.Skills != nil {
		user.Skills = req.Skills
	}
	if req.WorkloadCap != nil {
		user.WorkloadCap = *req.WorkloadCap
	}
	if req.OverBeyondCap != nil {
		user.OverBeyondCap = *req.OverBeyondCap
	}
	if req.Avatar != nil {
		user.Avatar = req.Avatar
	}
	if req.PhoneNumber != nil {
		user.PhoneNumber = req.PhoneNumber
	}
	if req.Timezone != nil {
		user.Timezone = *req.Timezone
	}
	if req.Currency != nil {
		user.PreferredCurrency = *req.Currency
	}
	if req.Notifications != nil {
		user.NotificationSettings = *req.Notifications
	}

	if err := uc.DB.Save(&user).Error; err != nil {
		return utils.FromStoreError(err)
	}

	utils.LogActivity(uc.DB, actor.ID, models.ActionUserUpdated, models.EntityUser, user.ID, nil,
		fmt.Sprintf("Updated user: %s", user.Name))

	return utils.Respond(c, fiber.StatusOK, user, "User updated successfully", nil)
}

func (uc *UserController) handleDelete(c *fiber.Ctx, actor *models.User, userID uint) error {
	if !utils.IsElevatedRole(actor.Role) {
		return utils.NewForbiddenError("You do not have permission to delete users")
	}

	var user models.User
	if err := uc.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NewNotFoundError("User not found")
		}
		return utils.FromStoreError(err)
	}

	// Soft delete only: the row stays, the account goes inactive.
	if err := uc.DB.Model(&user).Update("is_active", false).Error; err != nil {
		return utils.FromStoreError(err)
	}

	utils.LogActivity(uc.DB, actor.ID, models.ActionUserDeleted, models.EntityUser, user.ID, nil,
		fmt.Sprintf("Deleted user: %s", user.Name))

	return utils.Respond(c, fiber.StatusOK, nil, "User deleted successfully", nil)
}

func (uc *UserController) handleSetActive(c *fiber.Ctx, actor *models.User, userID uint, active bool) error {
	if !utils.IsElevatedRole(actor.Role) {
		return utils.NewForbiddenError("You do not have permission to change account status")
	}

	var user models.User
	if err := uc.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NewNotFoundError("User not found")
		}
		return utils.FromStoreError(err)
	}

	if err := uc.DB.Model(&user).Update("is_active", active).Error; err != nil {
		return utils.FromStoreError(err)
	}

	action := models.ActionUserActivated
	message := "User activated successfully"
	detail := "Activated user: " + user.Name
	if !active {
		action = models.ActionUserDeactivated
		message = "User deactivated successfully"
		detail = "Deactivated user: " + user.Name
	}
	utils.LogActivity(uc.DB, actor.ID, action, models.EntityUser, user.ID, nil, detail)

	return utils.Respond(c, fiber.StatusOK, nil, message, nil)
}

type updateSettingsData struct {
	Notifications *models.NotificationSettings `json:"notification_settings"`
	Timezone      *string                      `json:"timezone"`
	Currency      *string                      `json:"preferred_currency"`
}

func (uc *UserController) handleUpdateSettings(c *fiber.Ctx, actor *models.User, userID uint, data json.RawMessage) error {
	if userID == 0 {
		userID = actor.ID
	}
	if !utils.CanAccessUser(actor, userID) {
		return utils.NewForbiddenError("You do not have access to this user")
	}

	var req updateSettingsData
	if err := json.Unmarshal(data, &req); err != nil {
		return utils.NewValidationError("Invalid action data", err.Error())
	}

	var user models.User
	if err := uc.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NewNotFoundError("User not found")
		}
		return utils.FromStoreError(err)
	}

	if req.Notifications != nil {
		user.NotificationSettings = *req.Notifications
	}
	if req.Timezone != nil {
		user.Timezone = *req.Timezone
	}
	if req.Currency != nil {
		user.PreferredCurrency = *req.Currency
	}

	if err := uc.DB.Save(&user).Error; err != nil {
		return utils.FromStoreError(err)
	}

	return utils.Respond(c, fiber.StatusOK, nil, "Settings updated successfully", nil)
}
