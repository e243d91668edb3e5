package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	controller "bplcommander/controllers"
	"bplcommander/middleware"
	"bplcommander/utils"
)

// SetupRoutes wires the full API surface onto the app. Everything under /api
// except auth registration and login requires a bearer token; list endpoints
// additionally get the query parser and pagination validation.
func SetupRoutes(app *fiber.App, db *gorm.DB) {
	authController := controller.NewAuthController(db)
	userController := controller.NewUserController(db)
	projectController := controller.NewProjectController(db)
	initiativeController := controller.NewInitiativeController(db)
	workloadController := controller.NewWorkloadController(db)
	notificationController := controller.NewNotificationController(db)
	activityController := controller.NewActivityController(db)
	dashboardController := controller.NewDashboardController(db)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	auth := app.Group("/api/auth")
	auth.Post("/register", authController.Register)
	auth.Post("/login", authController.Login)

	authProtected := auth.Group("", middleware.Protected(db))
	authProtected.Post("/logout", authController.Logout)
	authProtected.Get("/me", authController.Me)
	authProtected.Post("/refresh", authController.Refresh)
	authProtected.Post("/change-password", authController.ChangePassword)

	api := app.Group("/api",
		middleware.Protected(db),
		middleware.APIRateLimiter(),
		middleware.ParseQuery(),
		middleware.ValidatePagination(),
	)

	api.Get("/users", userController.GetUsers)
	api.Post("/users", userController.HandleUserAction)
	api.Get("/users/:id", userController.GetUser)

	api.Get("/projects", projectController.GetProjects)
	api.Post("/projects", projectController.HandleProjectAction)
	api.Get("/projects/:id", projectController.GetProject)

	api.Get("/initiatives", initiativeController.GetInitiatives)
	api.Post("/initiatives", initiativeController.HandleInitiativeAction)
	api.Get("/initiatives/:id", initiativeController.GetInitiative)

	api.Get("/workload", workloadController.GetMyWorkload)
	api.Get("/workload/:id", workloadController.GetUserWorkload)

	api.Get("/notifications", notificationController.GetNotifications)
	api.Put("/notifications/read-all", notificationController.MarkAllRead)
	api.Put("/notifications/:id/read", notificationController.MarkRead)

	api.Get("/activity", activityController.GetActivityLog)

	api.Get("/dashboard/overview", dashboardController.GetOverview)

	app.Use(func(c *fiber.Ctx) error {
		return utils.NewNotFoundError("Route not found")
	})
}
