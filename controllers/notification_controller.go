package controller

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"bplcommander/middleware"
	"bplcommander/models"
	"bplcommander/utils"
)

type NotificationController struct {
	DB     *gorm.DB
	Logger *logrus.Entry
}

func NewNotificationController(db *gorm.DB) *NotificationController {
	return &NotificationController{DB: db, Logger: utils.Logger("notifications")}
}

// GetNotifications lists the caller's notifications, newest first. Supports
// unread=true and type=<kind>; a count flag returns the unread total only.
func (nc *NotificationController) GetNotifications(c *fiber.Ctx) error {
	qc := middleware.QueryFrom(c)
	actor := middleware.CurrentUser(c)

	scoped := func() *gorm.DB {
		tx := nc.DB.Model(&models.Notification{}).Where("user_id = ?", actor.ID)
		if qc.Unread {
			tx = tx.Where("read = ?", false)
		}
		if qc.Type != "" {
			tx = tx.Where("type = ?", strings.ToUpper(qc.Type))
		}
		return tx
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return utils.FromStoreError(err)
	}

	if qc.Flags.Count {
		var unread int64
		err := nc.DB.Model(&models.Notification{}).
			Where("user_id = ? AND read = ?", actor.ID, false).
			Count(&unread).Error
		if err != nil {
			return utils.FromStoreError(err)
		}
		return utils.OK(c, fiber.Map{"count": total, "unread": unread})
	}

	var notifications []models.Notification
	err := scoped().
		Order("created_at DESC").
		Offset(qc.Pagination.Offset()).
		Limit(qc.Pagination.Limit).
		Find(&notifications).Error
	if err != nil {
		return utils.FromStoreError(err)
	}

	return utils.Respond(c, fiber.StatusOK, notifications,
		"", utils.PaginationMeta(total, qc.Pagination.Page, qc.Pagination.Limit))
}

// MarkRead marks one of the caller's notifications as read. Notifications
// belonging to other users read as not found.
func (nc *NotificationController) MarkRead(c *fiber.Ctx) error {
	notificationID, err := c.ParamsInt("id")
	if err != nil || notificationID < 1 {
		return utils.NewValidationError("Invalid notification ID")
	}

	actor := middleware.CurrentUser(c)

	var notification models.Notification
	err = nc.DB.
		Where("id = ? AND user_id = ?", notificationID, actor.ID).
		First(&notification).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NewNotFoundError("Notification not found")
		}
		return utils.FromStoreError(err)
	}

	if !notification.Read {
		notification.Read = true
		if err := nc.DB.Save(&notification).Error; err != nil {
			return utils.FromStoreError(err)
		}
	}

	return utils.OK(c, notification)
}

// MarkAllRead marks every unread notification of the caller as read.
func (nc *NotificationController) MarkAllRead(c *fiber.Ctx) error {
	actor := middleware.CurrentUser(c)

	result := nc.DB.Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", actor.ID, false).
		Update("read", true)
	if result.Error != nil {
		return utils.FromStoreError(result.Error)
	}

	return utils.Respond(c, fiber.StatusOK, fiber.Map{"updated": result.RowsAffected},
		"All notifications marked as read", nil)
}
