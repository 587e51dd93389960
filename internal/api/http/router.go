package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/depositdefenders/accounts-service/internal/api/http/handlers"
	"github.com/depositdefenders/accounts-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Content        *handlers.ContentHandler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/signup", cfg.Auth.Signup)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/password/reset/request", cfg.Auth.RequestPasswordReset)
	authGroup.Post("/password/reset/confirm", cfg.Auth.ConfirmPasswordReset)
	authGroup.Get("/me", cfg.AuthMiddleware.Handle, cfg.Auth.Me)

	contentGroup := app.Group("/content")
	contentGroup.Get("/landing", cfg.Content.Landing)
	contentGroup.Get("/pricing", cfg.Content.Pricing)
}
