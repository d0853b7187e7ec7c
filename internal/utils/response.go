package utils

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/reverse-tutor/internal/dto"
)

// SendJSON sends a JSON payload using the provided HTTP status code.
func SendJSON(c *fiber.Ctx, status int, data interface{}) error {
	if status == 0 {
		status = fiber.StatusOK
	}

	return c.Status(status).JSON(data)
}

// SendDetail sends the {"detail": ...} error body the tutor service answers failures with.
func SendDetail(c *fiber.Ctx, status int, detail string) error {
	if detail == "" {
		detail = "error"
	}
	if status == 0 {
		status = fiber.StatusInternalServerError
	}

	return c.Status(status).JSON(dto.ErrorResponse{Detail: detail})
}
