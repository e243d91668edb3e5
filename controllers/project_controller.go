package controller

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"bplcommander/middleware"
	"bplcommander/models"
	"bplcommander/utils"
)

// projectFilterColumns are the filterable/searchable columns the projects
// table has.
var projectFilterColumns = []string{"status", "priority", "title", "description"}

// projectAssociations the include resolver may preload on projects.
var projectAssociations = []string{"Manager", "Assignments", "Milestones", "Comments"}

type ProjectController struct {
	DB         *gorm.DB
	Logger     *logrus.Entry
	Accountant *utils.WorkloadAccountant
}

func NewProjectController(db *gorm.DB) *ProjectController {
	return &ProjectController{
		DB:         db,
		Logger:     utils.Logger("projects"),
		Accountant: utils.NewWorkloadAccountant(db),
	}
}

// scopeVisible narrows a project query to what the actor may see: elevated
// roles see everything, everyone else sees owned or assigned projects.
func (pc *ProjectController) scopeVisible(tx *gorm.DB, actor *models.User) *gorm.DB {
	if utils.IsElevatedRole(actor.Role) {
		return tx
	}
	assigned := pc.DB.Model(&models.ProjectAssignment{}).
		Select("project_id").
		Where("employee_id = ?", actor.ID)
	return tx.Where("manager_id = ? OR id IN (?)", actor.ID, assigned)
}

// GetProjects lists projects visible to the actor. Supports the generic
// filters plus manager=<id>, the include list, and the analytics and count
// flags.
func (pc *ProjectController) GetProjects(c *fiber.Ctx) error {
	qc := middleware.QueryFrom(c)
	actor := middleware.CurrentUser(c)

	var base []utils.Condition
	if qc.Manager != "" {
		if managerID, err := strconv.Atoi(qc.Manager); err == nil {
			base = append(base, utils.Condition{Field: "manager_id", Op: utils.OpEq, Value: managerID})
		}
	}
	where := utils.BuildWhereClause(qc.Filters, base)

	scoped := func() *gorm.DB {
		return pc.scopeVisible(where.Apply(pc.DB.Model(&models.Project{}), projectFilterColumns), actor)
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return utils.FromStoreError(err)
	}

	if qc.Flags.Count {
		return utils.OK(c, fiber.Map{"count": total})
	}

	tx := utils.ApplyIncludes(scoped(), utils.BuildIncludeClause(qc.Include), projectAssociations)

	var projects []models.Project
	err := tx.
		Order("created_at DESC").
		Offset(qc.Pagination.Offset()).
		Limit(qc.Pagination.Limit).
		Find(&projects).Error
	if err != nil {
		return utils.FromStoreError(err)
	}

	meta := utils.PaginationMeta(total, qc.Pagination.Page, qc.Pagination.Limit)
	if qc.Flags.Analytics {
		meta["analytics"] = fiber.Map{
			"by_status": lo.CountValuesBy(projects, func(p models.Project) string {
				return p.Status.Wire()
			}),
			"by_priority": lo.CountValuesBy(projects, func(p models.Project) string {
				return p.Priority.Wire()
			}),
		}
	}

	return utils.Respond(c, fiber.StatusOK, projects, "", meta)
}

// GetProject fetches one project. A project the actor may not see is reported
// as not found, never as forbidden.
func (pc *ProjectController) GetProject(c *fiber.Ctx) error {
	projectID, err := c.ParamsInt("id")
	if err != nil || projectID < 1 {
		return utils.NewValidationError("Invalid project ID")
	}

	qc := middleware.QueryFrom(c)
	actor := middleware.CurrentUser(c)

	// Assignments are always loaded; the visibility check needs them.
	tx := pc.DB.Preload("Assignments")
	tx = utils.ApplyIncludes(tx, utils.BuildIncludeClause(qc.Include), projectAssociations)

	var project models.Project
	if err := tx.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NewNotFoundError("Project not found")
		}
		return utils.FromStoreError(err)
	}

	if !utils.HasProjectVisibility(actor, &project) {
		return utils.NewNotFoundError("Project not found")
	}

	return utils.OK(c, project)
}
