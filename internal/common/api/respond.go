package api

import (
	"leadcrm/pkg/apperr"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// RespondError translates a service error into the fixed status mapping:
// Validation 400, Forbidden 403, NotFound 404, Conflict 409. Anything outside
// the taxonomy is logged in full and surfaced as a generic 500.
func RespondError(c *fiber.Ctx, logger *zap.Logger, err error) error {
	status := apperr.Status(err)
	if status == fiber.StatusInternalServerError {
		if logger != nil {
			logger.Error("unexpected error", zap.Error(err), zap.String("path", c.Path()))
		}
		return c.Status(status).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
