package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/reverse-tutor/internal/handler"
)

// Dependencies groups the handlers a tutor service exposes.
type Dependencies struct {
	AppName     string
	AppEnv      string
	Middleware  []fiber.Handler
	Start       fiber.Handler
	Chat        fiber.Handler
	EndTeaching fiber.Handler
}

// Register wires the tutor service routes into the fiber application.
func Register(app *fiber.App, deps Dependencies) {
	for _, mw := range deps.Middleware {
		app.Use(mw)
	}

	app.Get("/health", handler.HealthCheck(deps.AppName, deps.AppEnv))

	// Session lifecycle
	if deps.Start != nil {
		app.Post("/session/start", deps.Start)
	}
	if deps.EndTeaching != nil {
		app.Post("/session/end_teaching", deps.EndTeaching)
	}

	if deps.Chat != nil {
		app.Post("/chat", deps.Chat)
	}
}
