package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"bplcommander/middleware"
	"bplcommander/models"
	"bplcommander/utils"
)

type DashboardController struct {
	DB         *gorm.DB
	Logger     *logrus.Entry
	Accountant *utils.WorkloadAccountant
}

func NewDashboardController(db *gorm.DB) *DashboardController {
	return &DashboardController{
		DB:         db,
		Logger:     utils.Logger("dashboard"),
		Accountant: utils.NewWorkloadAccountant(db),
	}
}

// GetOverview aggregates the caller's slice of the system: project status and
// priority distributions over what they can see, their own workload, unread
// notifications, and for management roles the team utilization.
func (dc *DashboardController) GetOverview(c *fiber.Ctx) error {
	actor := middleware.CurrentUser(c)

	projectScope := func() *gorm.DB {
		tx := dc.DB.Model(&models.Project{})
		if utils.IsElevatedRole(actor.Role) {
			return tx
		}
		assigned := dc.DB.Model(&models.ProjectAssignment{}).
			Select("project_id").
			Where("employee_id = ?", actor.ID)
		return tx.Where("manager_id = ? OR id IN (?)", actor.ID, assigned)
	}

	var projects []models.Project
	if err := projectScope().Find(&projects).Error; err != nil {
		return utils.FromStoreError(err)
	}

	byStatus := lo.CountValuesBy(projects, func(p models.Project) string {
		return p.Status.Wire()
	})
	byPriority := lo.CountValuesBy(projects, func(p models.Project) string {
		return p.Priority.Wire()
	})

	summary, err := dc.Accountant.ComputeCommittedLoad(actor)
	if err != nil {
		return err
	}

	var unread int64
	err = dc.DB.Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", actor.ID, false).
		Count(&unread).Error
	if err != nil {
		return utils.FromStoreError(err)
	}

	overview := fiber.Map{
		"projects": fiber.Map{
			"total":       len(projects),
			"by_status":   byStatus,
			"by_priority": byPriority,
		},
		"workload":             summary,
		"unread_notifications": unread,
	}

	if utils.IsManagementRole(actor.Role) {
		team, err := dc.teamUtilization(actor)
		if err != nil {
			return err
		}
		overview["team"] = team
	}

	return utils.OK(c, overview)
}

type teamMemberLoad struct {
	UserID   uint                  `json:"user_id"`
	Name     string                `json:"name"`
	Workload utils.WorkloadSummary `json:"workload"`
}

// teamUtilization computes per-member load for the actor's team: elevated
// roles see every active user, managers their direct reports.
func (dc *DashboardController) teamUtilization(actor *models.User) ([]teamMemberLoad, error) {
	tx := dc.DB.Where("is_active = ?", true)
	if !utils.IsElevatedRole(actor.Role) {
		tx = tx.Where("manager_id = ?", actor.ID)
	}

	var members []models.User
	if err := tx.Find(&members).Error; err != nil {
		return nil, utils.FromStoreError(err)
	}

	team := make([]teamMemberLoad, 0, len(members))
	for i := range members {
		member := &members[i]
		summary, err := dc.Accountant.ComputeCommittedLoad(member)
		if err != nil {
			return nil, err
		}
		team = append(team, teamMemberLoad{
			UserID:   member.ID,
			Name:     member.Name,
			Workload: summary,
		})
	}
	return team, nil
}
