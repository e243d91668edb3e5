package utils

import (
	"gorm.io/gorm"

	"bplcommander/models"
)

// Notify creates an in-app notification record. Delivery is fire-and-forget:
// the record is written here and the email copy (if the user opted in) is
// picked up later by the notification worker. Failures are logged, never fatal.
func Notify(db *gorm.DB, userID uint, ntype, title, message string, priority models.Priority, actionURL *string) {
	notification := models.Notification{
		UserID:    userID,
		Type:      ntype,
		Title:     title,
		Message:   message,
		Priority:  priority,
		ActionURL: actionURL,
	}
	if err := db.Create(&notification).Error; err != nil {
		Logger("notify").WithField("user_id", userID).Warnf("failed to create notification: %v", err)
	}
}
