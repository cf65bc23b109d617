package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/kavyadav/adminhub-api/internal/config"
	"github.com/kavyadav/adminhub-api/internal/handler"
	"github.com/kavyadav/adminhub-api/internal/middleware"
	"github.com/kavyadav/adminhub-api/internal/models"
	"github.com/kavyadav/adminhub-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler         *handler.AuthHandler
	ProfileHandler      *handler.ProfileHandler
	UserHandler         *handler.UserHandler
	StudentHandler      *handler.StudentHandler
	SettingsHandler     *handler.SettingsHandler
	NotificationHandler *handler.NotificationHandler
	ActivityLogHandler  *handler.ActivityLogHandler
	ReportHandler       *handler.ReportHandler
	DashboardHandler    *handler.DashboardHandler
	Authenticate        fiber.Handler
}

// Register wires the HTTP routes into the fiber application. Per-route role
// sets are listed at the route, not collapsed into shared policies.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/health", handler.HealthCheck(cfg))
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	authenticate := deps.Authenticate
	if authenticate == nil {
		authenticate = func(c *fiber.Ctx) error { return c.Next() }
	}

	adminOnly := middleware.RequireRole(models.RoleAdmin, models.RoleSuperAdmin)
	superAdminOnly := middleware.RequireRole(models.RoleSuperAdmin)

	auth := api.Group("/auth")
	auth.Post("/login", middleware.RateLimit("login", 10, time.Minute), deps.AuthHandler.Login)
	auth.Get("/profile", authenticate, deps.AuthHandler.Profile)

	profile := api.Group("/profile", authenticate)
	profile.Get("/", deps.ProfileHandler.Get)
	profile.Put("/", deps.ProfileHandler.Update)
	profile.Post("/change-password", deps.ProfileHandler.ChangePassword)

	users := api.Group("/users", authenticate)
	users.Post("/", adminOnly, deps.UserHandler.Create)
	users.Get("/", adminOnly, deps.UserHandler.List)
	users.Get("/:id", adminOnly, deps.UserHandler.Get)
	users.Put("/:id", adminOnly, deps.UserHandler.Update)
	users.Delete("/:id", superAdminOnly, deps.UserHandler.Delete)

	students := api.Group("/students", authenticate, adminOnly)
	students.Get("/", deps.StudentHandler.List)
	students.Get("/:id", deps.StudentHandler.Get)
	students.Post("/", deps.StudentHandler.Create)
	students.Put("/:id", deps.StudentHandler.Update)
	students.Delete("/:id", deps.StudentHandler.Delete)

	settings := api.Group("/settings", authenticate)
	settings.Get("/", deps.SettingsHandler.Get)
	settings.Put("/", deps.SettingsHandler.Update)

	notifications := api.Group("/notifications", authenticate)
	notifications.Get("/", deps.NotificationHandler.List)
	notifications.Post("/mark-read", deps.NotificationHandler.MarkRead)
	notifications.Get("/ws", deps.NotificationHandler.Upgrade, deps.NotificationHandler.Serve())
	notifications.Delete("/:id", deps.NotificationHandler.Delete)
	notifications.Delete("/", deps.NotificationHandler.Clear)

	api.Get("/activity-logs", authenticate, superAdminOnly, deps.ActivityLogHandler.List)

	reports := api.Group("/reports", authenticate, superAdminOnly)
	reports.Get("/stats", deps.ReportHandler.Stats)
	reports.Get("/user/:id", deps.ReportHandler.UserReport)

	api.Get("/dashboard/stats", authenticate, deps.DashboardHandler.Stats)
}
