package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/reverse-tutor/internal/utils"
)

// HealthResponse represents the payload returned by the health endpoint.
type HealthResponse struct {
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	Service     string    `json:"service"`
	Environment string    `json:"environment"`
}

// HealthCheck returns a handler that reports which service is answering.
func HealthCheck(service, environment string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		payload := HealthResponse{
			Status:      "ok",
			Timestamp:   time.Now().UTC(),
			Service:     service,
			Environment: environment,
		}

		return utils.SendJSON(c, fiber.StatusOK, payload)
	}
}
