package permission

import (
	"leadcrm/internal/common/api"
	"leadcrm/internal/config"
	"leadcrm/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type PermissionApi struct {
	controller *PermissionController
	config     *config.Config
	resolver   middleware.PrincipalResolver
	gate       middleware.PermissionGate
}

func NewPermissionApi(controller *PermissionController, cfg *config.Config, resolver middleware.PrincipalResolver, gate middleware.PermissionGate) api.Route {
	return &PermissionApi{
		controller: controller,
		config:     cfg,
		resolver:   resolver,
		gate:       gate,
	}
}

func (h *PermissionApi) Setup(app *fiber.App) {
	group := app.Group("/api/permissions", middleware.AuthMiddleware(h.resolver, h.config.SkipAuth))

	group.Get("/", middleware.RequirePermission(h.gate, "roles.permissions.view"), h.controller.GetCatalog)
	group.Get("/defaults", middleware.RequirePermission(h.gate, "roles.permissions.view"), h.controller.GetDefaults)
}
