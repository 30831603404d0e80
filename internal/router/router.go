package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/feconecta/feconecta-api/internal/config"
	"github.com/feconecta/feconecta-api/internal/handler"
	"github.com/feconecta/feconecta-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler         *handler.AuthHandler
	FeedHandler         *handler.FeedHandler
	SearchHandler       *handler.SearchHandler
	DailyMessageHandler *handler.DailyMessageHandler
	AnalyticsHandler    *handler.AnalyticsHandler
	JWTMiddleware       fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	api.Get("/metrics", observability.MetricsHandler())

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.AuthHandler != nil {
		deps.AuthHandler.Register(api.Group("/auth"))
	}

	if deps.FeedHandler != nil {
		deps.FeedHandler.Register(api.Group("/feed"))
	}

	if deps.SearchHandler != nil {
		deps.SearchHandler.Register(api.Group("/search"))
	}

	if deps.DailyMessageHandler != nil {
		deps.DailyMessageHandler.Register(api.Group("/daily-message"))
	}

	if deps.AnalyticsHandler != nil {
		deps.AnalyticsHandler.Register(api.Group("/analytics", jwtMiddleware))
	}
}
