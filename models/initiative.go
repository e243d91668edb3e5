package models

import (
	"time"

	"gorm.io/gorm"
)

// Initiative is over-and-beyond work tracked separately from project
// assignments. The sum of WorkloadPercentage across non-completed initiatives
// is bounded by the user's OverBeyondCap, but only as a surfaced metric —
// creation is never gated on it.
type Initiative struct {
	gorm.Model

	Title       string           `gorm:"not null" json:"title"`
	Description string           `json:"description"`
	Status      InitiativeStatus `gorm:"default:'OPEN'" json:"status"`

	AssignedTo uint `gorm:"not null;index" json:"assigned_to"`
	CreatedBy  uint `gorm:"not null" json:"created_by"`

	WorkloadPercentage int `gorm:"not null" json:"workload_percentage"`

	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Relations
	Assignee *User `gorm:"foreignKey:AssignedTo" json:"assignee,omitempty"`
	Creator  *User `gorm:"foreignKey:CreatedBy" json:"creator,omitempty"`
}
