package role

import (
	"leadcrm/internal/common/api"
	"leadcrm/internal/config"
	"leadcrm/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type RoleApi struct {
	controller *RoleController
	config     *config.Config
	resolver   middleware.PrincipalResolver
	gate       middleware.PermissionGate
}

func NewRoleApi(controller *RoleController, cfg *config.Config, resolver middleware.PrincipalResolver, gate middleware.PermissionGate) api.Route {
	return &RoleApi{
		controller: controller,
		config:     cfg,
		resolver:   resolver,
		gate:       gate,
	}
}

// Setup registers role routes
func (h *RoleApi) Setup(app *fiber.App) {
	roles := app.Group("/api/roles", middleware.AuthMiddleware(h.resolver, h.config.SkipAuth))

	roles.Get("/", middleware.RequirePermission(h.gate, "roles.roles.view"), h.controller.ListRoles)
	roles.Post("/", middleware.RequirePermission(h.gate, "roles.roles.create"), h.controller.CreateRole)
	roles.Get("/:id", middleware.RequirePermission(h.gate, "roles.roles.view"), h.controller.GetRole)
	roles.Put("/:id", middleware.RequirePermission(h.gate, "roles.roles.update"), h.controller.UpdateRole)
	roles.Delete("/:id", middleware.RequirePermission(h.gate, "roles.roles.delete"), h.controller.DeleteRole)
}
