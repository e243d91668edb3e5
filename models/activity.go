package models

import "gorm.io/gorm"

// Activity log actions.
const (
	ActionUserRegistered     = "USER_REGISTERED"
	ActionUserCreated        = "USER_CREATED"
	ActionUserUpdated        = "USER_UPDATED"
	ActionUserDeleted        = "USER_DELETED"
	ActionUserActivated      = "USER_ACTIVATED"
	ActionUserDeactivated    = "USER_DEACTIVATED"
	ActionProjectCreated     = "PROJECT_CREATED"
	ActionProjectUpdated     = "PROJECT_UPDATED"
	ActionProjectDeleted     = "PROJECT_DELETED"
	ActionProjectCompleted   = "PROJECT_COMPLETED"
	ActionEmployeeAssigned   = "EMPLOYEE_ASSIGNED"
	ActionEmployeeUnassigned = "EMPLOYEE_UNASSIGNED"
	ActionMilestoneAdded     = "MILESTONE_ADDED"
	ActionMilestoneCompleted = "MILESTONE_COMPLETED"
	ActionCommentAdded       = "COMMENT_ADDED"
	ActionInitiativeCreated  = "INITIATIVE_CREATED"
	ActionInitiativeUpdated  = "INITIATIVE_UPDATED"
	ActionInitiativeDeleted  = "INITIATIVE_DELETED"
	ActionInitiativeComplete = "INITIATIVE_COMPLETED"
)

// Entity types referenced by activity rows.
const (
	EntityUser       = "USER"
	EntityProject    = "PROJECT"
	EntityAssignment = "ASSIGNMENT"
	EntityMilestone  = "MILESTONE"
	EntityComment    = "COMMENT"
	EntityInitiative = "INITIATIVE"
)

// ActivityLog is an append-only audit trail written synchronously after every
// mutating operation. It is never read back by the core logic.
type ActivityLog struct {
	gorm.Model

	UserID     uint   `gorm:"not null;index" json:"user_id"`
	Action     string `gorm:"not null" json:"action"`
	EntityType string `gorm:"not null" json:"entity_type"`
	EntityID   uint   `gorm:"not null" json:"entity_id"`
	ProjectID  *uint  `gorm:"index" json:"project_id,omitempty"`
	Details    string `json:"details"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
}
