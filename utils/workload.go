package utils

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"bplcommander/models"
)

// WorkloadSummary is the committed-load breakdown for one user.
type WorkloadSummary struct {
	ProjectWorkload     int `json:"project_workload"`
	OverBeyondWorkload  int `json:"over_beyond_workload"`
	TotalWorkload       int `json:"total_workload"`
	AvailableCapacity   int `json:"available_capacity"`
	OverBeyondAvailable int `json:"over_beyond_available"`
}

// AssignmentLoad is the slice of an assignment that matters for accounting.
type AssignmentLoad struct {
	Involvement   int
	ProjectStatus models.ProjectStatus
}

// InitiativeLoad is the slice of an initiative that matters for accounting.
type InitiativeLoad struct {
	Workload int
	Status   models.InitiativeStatus
}

// SummarizeWorkload computes the committed load from raw rows. Only
// assignments to ACTIVE projects count toward the project load; only
// non-completed initiatives count toward the over-and-beyond load.
func SummarizeWorkload(user *models.User, assignments []AssignmentLoad, initiatives []InitiativeLoad) WorkloadSummary {
	var projectLoad, overBeyondLoad int
	for _, a := range assignments {
		if a.ProjectStatus == models.ProjectActive {
			projectLoad += a.Involvement
		}
	}
	for _, i := range initiatives {
		if i.Status != models.InitiativeCompleted {
			overBeyondLoad += i.Workload
		}
	}
	return WorkloadSummary{
		ProjectWorkload:     projectLoad,
		OverBeyondWorkload:  overBeyondLoad,
		TotalWorkload:       projectLoad + overBeyondLoad,
		AvailableCapacity:   user.WorkloadCap - projectLoad,
		OverBeyondAvailable: user.OverBeyondCap - overBeyondLoad,
	}
}

// FitsWithinCap reports whether adding requested involvement keeps the project
// load within the cap.
func FitsWithinCap(currentLoad, requested, capacity int) bool {
	return currentLoad+requested <= capacity
}

// WorkloadAccountant computes committed load and gates new assignments against
// the workload cap. The check is a creation-time gate only: the cap can still
// be exceeded later if it is lowered or a project is reactivated, and two
// concurrent assignments can race past it (no retry or CAS guard).
type WorkloadAccountant struct {
	DB *gorm.DB
}

func NewWorkloadAccountant(db *gorm.DB) *WorkloadAccountant {
	return &WorkloadAccountant{DB: db}
}

// ComputeCommittedLoad sums involvement across the user's assignments to
// ACTIVE projects and workload across their non-completed initiatives.
func (wa *WorkloadAccountant) ComputeCommittedLoad(user *models.User) (WorkloadSummary, error) {
	var assignments []models.ProjectAssignment
	err := wa.DB.
		Preload("Project", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "status")
		}).
		Where("employee_id = ?", user.ID).
		Find(&assignments).Error
	if err != nil {
		return WorkloadSummary{}, FromStoreError(err)
	}

	var initiatives []models.Initiative
	err = wa.DB.
		Where("assigned_to = ? AND status <> ?", user.ID, models.InitiativeCompleted).
		Find(&initiatives).Error
	if err != nil {
		return WorkloadSummary{}, FromStoreError(err)
	}

	assignmentLoads := make([]AssignmentLoad, 0, len(assignments))
	for _, a := range assignments {
		load := AssignmentLoad{Involvement: a.InvolvementPercentage}
		if a.Project != nil {
			load.ProjectStatus = a.Project.Status
		}
		assignmentLoads = append(assignmentLoads, load)
	}
	initiativeLoads := make([]InitiativeLoad, 0, len(initiatives))
	for _, i := range initiatives {
		initiativeLoads = append(initiativeLoads, InitiativeLoad{Workload: i.WorkloadPercentage, Status: i.Status})
	}

	return SummarizeWorkload(user, assignmentLoads, initiativeLoads), nil
}

// TryAssign creates a project assignment if the (project, employee) pair is
// new and the employee's active-project load plus the requested involvement
// stays within their workload cap. On success it appends an activity-log entry
// and notifies the employee; both side effects are best-effort.
func (wa *WorkloadAccountant) TryAssign(actorID uint, project *models.Project, employee *models.User, involvement int, roleLabel string) (*models.ProjectAssignment, error) {
	var existing models.ProjectAssignment
	err := wa.DB.
		Where("project_id = ? AND employee_id = ?", project.ID, employee.ID).
		First(&existing).Error
	if err == nil {
		return nil, NewConflictError("Employee is already assigned to this project")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, FromStoreError(err)
	}

	summary, err := wa.ComputeCommittedLoad(employee)
	if err != nil {
		return nil, err
	}
	if !FitsWithinCap(summary.ProjectWorkload, involvement, employee.WorkloadCap) {
		return nil, NewConflictError(fmt.Sprintf(
			"Assignment would exceed workload capacity: current %d%% + requested %d%% > cap %d%%",
			summary.ProjectWorkload, involvement, employee.WorkloadCap))
	}

	if roleLabel == "" {
		roleLabel = "contributor"
	}
	assignment := models.ProjectAssignment{
		ProjectID:             project.ID,
		EmployeeID:            employee.ID,
		InvolvementPercentage: involvement,
		RoleLabel:             roleLabel,
	}
	if err := wa.DB.Create(&assignment).Error; err != nil {
		return nil, FromStoreError(err)
	}

	LogActivity(wa.DB, actorID, models.ActionEmployeeAssigned, models.EntityAssignment, assignment.ID, &project.ID,
		fmt.Sprintf("Assigned %s to project %q at %d%%", employee.Name, project.Title, involvement))

	actionURL := fmt.Sprintf("/projects/%d", project.ID)
	Notify(wa.DB, employee.ID, models.NotificationAssignment,
		"New project assignment",
		fmt.Sprintf("You have been assigned to %q at %d%% involvement", project.Title, involvement),
		models.PriorityMedium, &actionURL)

	return &assignment, nil
}
