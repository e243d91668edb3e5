package controller

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"bplcommander/middleware"
	"bplcommander/models"
	"bplcommander/utils"
)

type ActivityController struct {
	DB     *gorm.DB
	Logger *logrus.Entry
}

func NewActivityController(db *gorm.DB) *ActivityController {
	return &ActivityController{DB: db, Logger: utils.Logger("activity")}
}

// GetActivityLog lists the audit trail, newest first. Elevated roles only.
// Supports project=<id> and user=<id> narrowing via the raw query string.
func (ac *ActivityController) GetActivityLog(c *fiber.Ctx) error {
	actor := middleware.CurrentUser(c)
	if !utils.IsElevatedRole(actor.Role) {
		return utils.NewForbiddenError("You do not have permission to view the activity log")
	}

	qc := middleware.QueryFrom(c)

	scoped := func() *gorm.DB {
		tx := ac.DB.Model(&models.ActivityLog{})
		if raw := c.Query("project"); raw != "" {
			if projectID, err := strconv.Atoi(raw); err == nil {
				tx = tx.Where("project_id = ?", projectID)
			}
		}
		if raw := c.Query("user"); raw != "" {
			if userID, err := strconv.Atoi(raw); err == nil {
				tx = tx.Where("user_id = ?", userID)
			}
		}
		return tx
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return utils.FromStoreError(err)
	}

	var entries []models.ActivityLog
	err := scoped().
		Order("created_at DESC").
		Offset(qc.Pagination.Offset()).
		Limit(qc.Pagination.Limit).
		Find(&entries).Error
	if err != nil {
		return utils.FromStoreError(err)
	}

	return utils.Respond(c, fiber.StatusOK, entries,
		"", utils.PaginationMeta(total, qc.Pagination.Page, qc.Pagination.Limit))
}
