package alarm

import (
	"leadcrm/internal/common/api"
	"leadcrm/internal/config"
	"leadcrm/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type AlarmApi struct {
	controller *AlarmController
	config     *config.Config
	resolver   middleware.PrincipalResolver
	gate       middleware.PermissionGate
}

func NewAlarmApi(controller *AlarmController, cfg *config.Config, resolver middleware.PrincipalResolver, gate middleware.PermissionGate) api.Route {
	return &AlarmApi{
		controller: controller,
		config:     cfg,
		resolver:   resolver,
		gate:       gate,
	}
}

// Setup registers alarm routes
func (h *AlarmApi) Setup(app *fiber.App) {
	alarms := app.Group("/api/alarms", middleware.AuthMiddleware(h.resolver, h.config.SkipAuth))

	alarms.Get("/", middleware.RequirePermission(h.gate, "alarms.alarms.view"), h.controller.List)
	alarms.Post("/", middleware.RequirePermission(h.gate, "alarms.alarms.create"), h.controller.Create)
	alarms.Get("/count", middleware.RequirePermission(h.gate, "alarms.alarms.view"), h.controller.CountActive)
	alarms.Get("/lead/:leadId", middleware.RequirePermission(h.gate, "alarms.alarms.view"), h.controller.GetForLead)
	alarms.Patch("/:id", middleware.RequirePermission(h.gate, "alarms.alarms.update"), h.controller.Update)
	alarms.Delete("/:id", middleware.RequirePermission(h.gate, "alarms.alarms.delete"), h.controller.Delete)
}
