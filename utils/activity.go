package utils

import (
	"gorm.io/gorm"

	"bplcommander/models"
)

// LogActivity appends an audit row. Activity writes are best-effort side
// effects issued after the primary write; a failure is logged, never fatal.
func LogActivity(db *gorm.DB, userID uint, action, entityType string, entityID uint, projectID *uint, details string) {
	entry := models.ActivityLog{
		UserID:     userID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		ProjectID:  projectID,
		Details:    details,
	}
	if err := db.Create(&entry).Error; err != nil {
		Logger("activity").WithField("action", action).Warnf("failed to write activity log: %v", err)
	}
}
