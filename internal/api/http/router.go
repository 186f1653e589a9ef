package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/correspondence-service/internal/api/http/handlers"
	"github.com/spec-kit/correspondence-service/internal/auth"
)

// RouteConfig bundles the handlers and middleware required to build the route tree.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Correspondence *handlers.CorrespondenceHandler
	Directory      *handlers.DirectoryHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires the HTTP surface onto the fiber application.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/auth/login", cfg.Auth.Login)
	app.Post("/auth/password/change", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated(), cfg.Auth.ChangePassword)

	api := app.Group("/api", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())

	// Static segments must be registered before the ":id" captures.
	api.Get("/correspondence/stats", cfg.Correspondence.Stats)
	api.Get("/correspondence/triage", cfg.Correspondence.Triage)

	api.Get("/correspondence", cfg.Correspondence.List)
	api.Post("/correspondence", auth.RequireMutator(), cfg.Correspondence.Create)
	api.Get("/correspondence/:id", cfg.Correspondence.Get)
	api.Patch("/correspondence/:id", auth.RequireMutator(), cfg.Correspondence.Update)
	api.Get("/correspondence/:id/comments", cfg.Correspondence.ListComments)
	api.Post("/correspondence/:id/comments", cfg.Correspondence.AddComment)
	api.Get("/correspondence/:id/activity", cfg.Correspondence.ListActivity)

	api.Get("/users", cfg.Directory.ListUsers)
	api.Get("/departments", cfg.Directory.ListDepartments)
	api.Get("/divisions", cfg.Directory.ListDivisions)
}
