package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/university-api/internal/config"
	"github.com/noah-isme/university-api/internal/handler"
	"github.com/noah-isme/university-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	StudentHandler *handler.StudentHandler
	MetricsHandler fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})

	app.Get("/", handler.Root())
	app.Get("/status", handler.HealthCheck())

	if deps.MetricsHandler != nil {
		app.Get(observability.MetricsPath, deps.MetricsHandler)
	}

	if deps.StudentHandler != nil {
		deps.StudentHandler.Register(app)
	}
}
