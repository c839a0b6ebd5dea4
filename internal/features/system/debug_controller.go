package system

import (
	"leadcrm/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type DebugController struct{}

func NewDebugController() *DebugController {
	return &DebugController{}
}

// GetCurrentUser godoc
// @Summary      Get current user info
// @Description  Get the resolved principal for the current request
// @Tags         debug
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /debug/me [get]
func (c *DebugController) GetCurrentUser(ctx *fiber.Ctx) error {
	principal := middleware.PrincipalFromCtx(ctx)
	if principal == nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	return ctx.JSON(fiber.Map{
		"user_id":         principal.UserID.Hex(),
		"role_name":       principal.RoleName,
		"permissions":     principal.Permissions,
		"is_system_admin": principal.IsSystemAdmin,
	})
}
