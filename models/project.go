package models

import (
	"time"

	"gorm.io/gorm"
)

// Project is owned by its manager but mutable by anyone at manager tier or
// above. Version increases by exactly 1 per update; a ProjectVersion snapshot
// is written before the row changes.
type Project struct {
	gorm.Model

	Title       string        `gorm:"not null" json:"title"`
	Description string        `json:"description"`
	Status      ProjectStatus `gorm:"default:'ACTIVE'" json:"status"`
	Priority    Priority      `gorm:"default:'MEDIUM'" json:"priority"`

	ManagerID uint  `gorm:"not null;index" json:"manager_id"`
	Manager   *User `gorm:"foreignKey:ManagerID" json:"manager,omitempty"`

	EstimatedHours int      `gorm:"default:0" json:"estimated_hours"`
	BudgetAmount   float64  `gorm:"default:0" json:"budget_amount"`
	BudgetCurrency string   `gorm:"default:'USD'" json:"budget_currency"`
	Timeline       string   `json:"timeline"`
	Tags           []string `gorm:"serializer:json" json:"tags"`

	Version int `gorm:"default:1" json:"version"`

	// Relations
	Assignments []ProjectAssignment `gorm:"foreignKey:ProjectID" json:"assignments,omitempty"`
	Milestones  []Milestone         `gorm:"foreignKey:ProjectID" json:"milestones,omitempty"`
	Comments    []Comment           `gorm:"foreignKey:ProjectID" json:"comments,omitempty"`
}

// ProjectSnapshot is the state captured into a ProjectVersion row before a
// project mutation is applied.
type ProjectSnapshot struct {
	Title          string        `json:"title"`
	Description    string        `json:"description"`
	Status         ProjectStatus `json:"status"`
	Priority       Priority      `json:"priority"`
	ManagerID      uint          `json:"manager_id"`
	EstimatedHours int           `json:"estimated_hours"`
	BudgetAmount   float64       `json:"budget_amount"`
	BudgetCurrency string        `json:"budget_currency"`
	Timeline       string        `json:"timeline"`
	Tags           []string      `json:"tags"`
}

// SnapshotOf captures the mutable fields of a project as they stand.
func SnapshotOf(p *Project) ProjectSnapshot {
	return ProjectSnapshot{
		Title:          p.Title,
		Description:    p.Description,
		Status:         p.Status,
		Priority:       p.Priority,
		ManagerID:      p.ManagerID,
		EstimatedHours: p.EstimatedHours,
		BudgetAmount:   p.BudgetAmount,
		BudgetCurrency: p.BudgetCurrency,
		Timeline:       p.Timeline,
		Tags:           p.Tags,
	}
}

// ProjectVersion is an append-only snapshot log, one row per project update.
type ProjectVersion struct {
	gorm.Model

	ProjectID uint            `gorm:"not null;index" json:"project_id"`
	Version   int             `gorm:"not null" json:"version"`
	ChangedBy uint            `gorm:"not null" json:"changed_by"`
	Snapshot  ProjectSnapshot `gorm:"serializer:json" json:"snapshot"`
}

// ProjectAssignment joins a project and an employee. The (project, employee)
// pair is unique; InvolvementPercentage counts toward the employee's workload
// cap while the project is ACTIVE. No DeletedAt here: unassign deletes the row
// for real, otherwise the unique index would still hold the pair and block a
// later re-assignment.
type ProjectAssignment struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ProjectID  uint `gorm:"not null;uniqueIndex:idx_project_employee" json:"project_id"`
	EmployeeID uint `gorm:"not null;uniqueIndex:idx_project_employee" json:"employee_id"`

	InvolvementPercentage int    `gorm:"not null" json:"involvement_percentage"`
	RoleLabel             string `gorm:"default:'contributor'" json:"role"`

	// Relations
	Project  *Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Employee *User    `gorm:"foreignKey:EmployeeID" json:"employee,omitempty"`
}

// Milestone belongs to a project. CompletedAt is set only on the transition
// to completed.
type Milestone struct {
	gorm.Model

	ProjectID   uint       `gorm:"not null;index" json:"project_id"`
	Title       string     `gorm:"not null" json:"title"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Completed   bool       `gorm:"default:false" json:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Comment belongs to a project and its author. Comments are immutable once
// created; no edit operation is exposed.
type Comment struct {
	gorm.Model

	ProjectID uint   `gorm:"not null;index" json:"project_id"`
	UserID    uint   `gorm:"not null;index" json:"user_id"`
	Content   string `gorm:"not null" json:"content"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
