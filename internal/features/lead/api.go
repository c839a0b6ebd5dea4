package lead

import (
	"leadcrm/internal/common/api"
	"leadcrm/internal/config"
	"leadcrm/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type LeadApi struct {
	controller *LeadController
	config     *config.Config
	resolver   middleware.PrincipalResolver
	gate       middleware.PermissionGate
}

func NewLeadApi(controller *LeadController, cfg *config.Config, resolver middleware.PrincipalResolver, gate middleware.PermissionGate) api.Route {
	return &LeadApi{
		controller: controller,
		config:     cfg,
		resolver:   resolver,
		gate:       gate,
	}
}

// Setup registers lead routes
func (h *LeadApi) Setup(app *fiber.App) {
	leads := app.Group("/api/leads", middleware.AuthMiddleware(h.resolver, h.config.SkipAuth))

	leads.Get("/", middleware.RequirePermission(h.gate, "leads.all.view"), h.controller.ListAccessible)
	leads.Get("/:id", middleware.RequirePermission(h.gate, "leads.detail.view"), h.controller.GetLead)
}
