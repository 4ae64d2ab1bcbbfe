package http

import (
	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spec-kit/issue-tracker/internal/api/http/handlers"
	"github.com/spec-kit/issue-tracker/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Issues         *handlers.IssuesHandler
	Users          *handlers.UsersHandler
	AuthMiddleware *auth.AuthMiddleware
	RateLimiter    fiber.Handler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/refresh-token", cfg.Auth.RefreshToken)
	authGroup.Post("/logout", cfg.AuthMiddleware.Handle, cfg.Auth.Logout)
	authGroup.Post("/password/change", cfg.AuthMiddleware.Handle, cfg.Auth.ChangePassword)

	issues := api.Group("/issues", cfg.AuthMiddleware.Handle)
	issues.Post("/", auth.Require(auth.OpIssueCreate), cfg.RateLimiter, cfg.Issues.Create)
	issues.Get("/", auth.Require(auth.OpIssueList), cfg.Issues.List)
	issues.Get("/:id", auth.Require(auth.OpIssueGet), cfg.Issues.Get)
	issues.Put("/:id", auth.Require(auth.OpIssueUpdate), cfg.Issues.Update)
	issues.Delete("/:id", auth.Require(auth.OpIssueDelete), cfg.Issues.Delete)
	issues.Put("/:id/assign", auth.Require(auth.OpIssueAssign), cfg.Issues.Assign)
	issues.Put("/:id/status", auth.Require(auth.OpIssueUpdateStatus), cfg.Issues.UpdateStatus)
	issues.Post("/:id/comments", auth.Require(auth.OpIssueComment), cfg.Issues.AddComment)

	users := api.Group("/users", cfg.AuthMiddleware.Handle)
	users.Get("/", auth.Require(auth.OpUserList), cfg.Users.List)
	users.Get("/role/:role", auth.Require(auth.OpUserListByRole), cfg.Users.ListByRole)
	users.Get("/:id", auth.Require(auth.OpUserGet), cfg.Users.Get)
	users.Put("/:id", auth.Require(auth.OpUserUpdate), cfg.Users.Update)
	users.Delete("/:id", auth.Require(auth.OpUserDelete), cfg.Users.Delete)
}
