package models

import (
	"time"

	"gorm.io/gorm"
)

// NotificationSettings holds per-user delivery preferences, stored as a JSON column.
type NotificationSettings struct {
	Email             bool `json:"email"`
	InApp             bool `json:"in_app"`
	ProjectUpdates    bool `json:"project_updates"`
	DeadlineReminders bool `json:"deadline_reminders"`
	WeeklyReports     bool `json:"weekly_reports"`
}

// DefaultNotificationSettings are applied at registration.
func DefaultNotificationSettings() NotificationSettings {
	return NotificationSettings{
		Email:             true,
		InApp:             true,
		ProjectUpdates:    true,
		DeadlineReminders: true,
		WeeklyReports:     false,
	}
}

// User represents an account in the system. Users form a management tree via
// ManagerID; deletion is always a soft delete through IsActive.
type User struct {
	gorm.Model

	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
	Name         string `gorm:"not null" json:"name"`

	Role        Role   `gorm:"default:'EMPLOYEE'" json:"role"`
	Designation string `json:"designation"`

	// Management hierarchy (self-reference, acyclic)
	ManagerID *uint `gorm:"index" json:"manager_id,omitempty"`

	Department *string  `json:"department,omitempty"`
	Skills     []string `gorm:"serializer:json" json:"skills"`

	// Capacity settings (percentages)
	WorkloadCap   int `gorm:"default:100" json:"workload_cap"`
	OverBeyondCap int `gorm:"default:20" json:"over_beyond_cap"`

	// Profile
	Avatar            *string `json:"avatar,omitempty"`
	PhoneNumber       *string `json:"phone_number,omitempty"`
	Timezone          string  `gorm:"default:'UTC'" json:"timezone"`
	PreferredCurrency string  `gorm:"default:'USD'" json:"preferred_currency"`

	NotificationSettings NotificationSettings `gorm:"serializer:json" json:"notification_settings"`

	IsActive    bool       `gorm:"default:true" json:"is_active"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`

	// Relations
	Manager         *User               `gorm:"foreignKey:ManagerID" json:"manager,omitempty"`
	Subordinates    []User              `gorm:"foreignKey:ManagerID" json:"subordinates,omitempty"`
	ManagedProjects []Project           `gorm:"foreignKey:ManagerID" json:"managed_projects,omitempty"`
	Assignments     []ProjectAssignment `gorm:"foreignKey:EmployeeID" json:"assignments,omitempty"`
}
