package permission

import (
	"github.com/gofiber/fiber/v2"
)

type PermissionController struct {
	registry *Registry
}

func NewPermissionController(registry *Registry) *PermissionController {
	return &PermissionController{registry: registry}
}

// GetCatalog returns the full catalog grouped by module/screen for the
// role-editor UI.
func (c *PermissionController) GetCatalog(ctx *fiber.Ctx) error {
	return ctx.JSON(fiber.Map{
		"modules": c.registry.Modules(),
		"keys":    c.registry.ListAll(),
	})
}

// GetDefaults returns the keys pre-checked when creating a new role.
func (c *PermissionController) GetDefaults(ctx *fiber.Ctx) error {
	return ctx.JSON(fiber.Map{
		"keys": c.registry.DefaultsForNewRole(),
	})
}
