package models

import (
	"time"

	"gorm.io/gorm"
)

// Notification types.
const (
	NotificationSystem        = "SYSTEM"
	NotificationAssignment    = "ASSIGNMENT"
	NotificationProjectUpdate = "PROJECT_UPDATE"
)

// Notification is a fire-and-forget record created as a side effect of
// assignment and registration events. EmailedAt is set by the delivery worker
// once the email copy has gone out.
type Notification struct {
	gorm.Model

	UserID    uint     `gorm:"not null;index" json:"user_id"`
	Type      string   `gorm:"not null" json:"type"`
	Title     string   `gorm:"not null" json:"title"`
	Message   string   `gorm:"not null" json:"message"`
	Priority  Priority `gorm:"default:'MEDIUM'" json:"priority"`
	ActionURL *string  `json:"action_url,omitempty"`

	Read      bool       `gorm:"default:false" json:"read"`
	EmailedAt *time.Time `json:"-"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
}
