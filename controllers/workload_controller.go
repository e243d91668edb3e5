package controller

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"bplcommander/middleware"
	"bplcommander/models"
	"bplcommander/utils"
)

type WorkloadController struct {
	DB         *gorm.DB
	Logger     *logrus.Entry
	Accountant *utils.WorkloadAccountant
}

func NewWorkloadController(db *gorm.DB) *WorkloadController {
	return &WorkloadController{
		DB:         db,
		Logger:     utils.Logger("workload"),
		Accountant: utils.NewWorkloadAccountant(db),
	}
}

// GetMyWorkload returns the committed-load breakdown for the caller.
func (wc *WorkloadController) GetMyWorkload(c *fiber.Ctx) error {
	actor := middleware.CurrentUser(c)

	summary, err := wc.Accountant.ComputeCommittedLoad(actor)
	if err != nil {
		return err
	}

	return utils.OK(c, fiber.Map{
		"user_id":  actor.ID,
		"workload": summary,
	})
}

// GetUserWorkload returns the breakdown for another user, subject to the same
// access rule as the user detail endpoint.
func (wc *WorkloadController) GetUserWorkload(c *fiber.Ctx) error {
	userID, err := c.ParamsInt("id")
	if err != nil || userID < 1 {
		return utils.NewValidationError("Invalid user ID")
	}

	actor := middleware.CurrentUser(c)
	if !utils.CanAccessUser(actor, uint(userID)) {
		return utils.NewForbiddenError("You do not have permission to view this user's workload")
	}

	var user models.User
	if err := wc.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NewNotFoundError("User not found")
		}
		return utils.FromStoreError(err)
	}

	summary, err := wc.Accountant.ComputeCommittedLoad(&user)
	if err != nil {
		return err
	}

	return utils.OK(c, fiber.Map{
		"user_id":  user.ID,
		"workload": summary,
	})
}
