package controller

import (
	"errors"
	"fmt"
	"time"

	"github.com/badoux/checkmail"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"bplcommander/middleware"
	"bplcommander/models"
	"bplcommander/utils"
)

type AuthController struct {
	DB     *gorm.DB
	Logger *logrus.Entry
}

func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{DB: db, Logger: utils.Logger("auth")}
}

type RegisterRequest struct {
	Email         string                       `json:"email" validate:"required,email"`
	Password      string                       `json:"password" validate:"required,min=6"`
	Name          string                       `json:"name" validate:"required,min=2"`
	Role          models.Role                  `json:"role" validate:"required"`
	Designation   string                       `json:"designation" validate:"required,min=2"`
	ManagerID     *uint                        `json:"manager_id"`
	Department    *string                      `json:"department"`
	Notifications *models.NotificationSettings `json:"notification_settings"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required,min=6"`
	NewPassword     string `json:"new_password" validate:"required,min=6"`
}

func (ac *AuthController) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.NewValidationError("Invalid request body")
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.NewValidationError("Invalid input", err.Error())
	}
	if err := checkmail.ValidateFormat(req.Email); err != nil {
		return utils.NewValidationError("email must be a valid email")
	}

	var existing models.User
	if err := ac.DB.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		return utils.NewConflictError("User with this email already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.FromStoreError(err)
	}

	if req.ManagerID != nil {
		if err := utils.ValidateManagerChain(ac.DB, 0, *req.ManagerID); err != nil {
			return err
		}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), 12)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	settings := models.DefaultNotificationSettings()
	if req.Notifications != nil {
		settings = *req.Notifications
	}

	user := models.User{
		Email:                req.Email,
		PasswordHash:         string(hashed),
		Name:                 req.Name,
		Role:                 req.Role,
		Designation:          req.Designation,
		ManagerID:            req.ManagerID,
		Department:           req.Department,
		Skills:               []string{},
		WorkloadCap:          100,
		OverBeyondCap:        20,
		NotificationSettings: settings,
		IsActive:             true,
	}
	if err := ac.DB.Create(&user).Error; err != nil {
		return utils.FromStoreError(err)
	}

	token, expiresIn, err := utils.GenerateJWTToken(&user)
	if err != nil {
		return fmt.Errorf("signing token: %w", err)
	}

	utils.LogActivity(ac.DB, user.ID, models.ActionUserRegistered, models.EntityUser, user.ID, nil,
		fmt.Sprintf("User registered: %s (%s)", user.Name, user.Email))

	actionURL := "/profile"
	utils.Notify(ac.DB, user.ID, models.NotificationSystem,
		"Welcome to BPL Commander!",
		"Your account has been created successfully. Complete your profile to get started.",
		models.PriorityMedium, &actionURL)

	return utils.Created(c, fiber.Map{
		"user":       user,
		"token":      token,
		"expires_in": expiresIn,
	}, "User registered successfully")
}

func (ac *AuthController) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.NewValidationError("Invalid request body")
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.NewValidationError("Invalid input", err.Error())
	}

	var user models.User
	if err := ac.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		return utils.NewUnauthorizedError("Invalid credentials or inactive account")
	}
	if !user.IsActive {
		return utils.NewUnauthorizedError("Invalid credentials or inactive account")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return utils.NewUnauthorizedError("Invalid credentials")
	}

	token, expiresIn, err := utils.GenerateJWTToken(&user)
	if err != nil {
		return fmt.Errorf("signing token: %w", err)
	}

	now := time.Now()
	if err := ac.DB.Model(&user).Update("last_login_at", now).Error; err != nil {
		ac.Logger.Warnf("failed to record login time for user %d: %v", user.ID, err)
	}
	user.LastLoginAt = &now

	return utils.OK(c, fiber.Map{
		"user":       user,
		"token":      token,
		"expires_in": expiresIn,
	})
}

func (ac *AuthController) Logout(c *fiber.Ctx) error {
	return utils.Respond(c, fiber.StatusOK, nil, "Logged out successfully", nil)
}

func (ac *AuthController) Me(c *fiber.Ctx) error {
	return utils.OK(c, middleware.CurrentUser(c))
}

func (ac *AuthController) Refresh(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	token, expiresIn, err := utils.GenerateJWTToken(user)
	if err != nil {
		return fmt.Errorf("signing token: %w", err)
	}

	return utils.OK(c, fiber.Map{
		"token":      token,
		"expires_in": expiresIn,
	})
}

func (ac *AuthController) ChangePassword(c *fiber.Ctx) error {
	var req ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.NewValidationError("Invalid request body")
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.NewValidationError("Invalid input", err.Error())
	}

	user := middleware.CurrentUser(c)

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return utils.NewValidationError("Current password is incorrect")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), 12)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	if err := ac.DB.Model(user).Update("password_hash", string(hashed)).Error; err != nil {
		return utils.FromStoreError(err)
	}

	return utils.Respond(c, fiber.StatusOK, nil, "Password changed successfully", nil)
}
