package middleware

import (
	common_models "leadcrm/internal/common/models"
	"leadcrm/internal/config"

	"github.com/gofiber/fiber/v2"
)

// ServiceKeyMiddleware authenticates trusted server-to-server calls (scheduler
// and automation triggers) via the shared SERVICE_KEY secret. The request is
// given an admin-equivalent principal; every downstream check still goes
// through the authorization gate.
func ServiceKeyMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.Get("X-Service-Key")
		if cfg.ServiceKey == "" || key == "" || key != cfg.ServiceKey {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid service key",
			})
		}

		setPrincipal(c, &common_models.Principal{
			RoleName:      "Service",
			IsSystemAdmin: true,
		})
		return c.Next()
	}
}
