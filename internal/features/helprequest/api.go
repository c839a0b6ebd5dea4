package helprequest

import (
	"leadcrm/internal/common/api"
	"leadcrm/internal/config"
	"leadcrm/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type HelpRequestApi struct {
	controller *HelpRequestController
	config     *config.Config
	resolver   middleware.PrincipalResolver
	gate       middleware.PermissionGate
}

func NewHelpRequestApi(controller *HelpRequestController, cfg *config.Config, resolver middleware.PrincipalResolver, gate middleware.PermissionGate) api.Route {
	return &HelpRequestApi{
		controller: controller,
		config:     cfg,
		resolver:   resolver,
		gate:       gate,
	}
}

// Setup registers help request routes
func (h *HelpRequestApi) Setup(app *fiber.App) {
	requests := app.Group("/api/help-requests", middleware.AuthMiddleware(h.resolver, h.config.SkipAuth))

	requests.Post("/", middleware.RequirePermission(h.gate, "leads.detail.helpRequest"), h.controller.Create)
	requests.Get("/incoming", middleware.RequirePermission(h.gate, "helpRequests.inbox.view"), h.controller.ListIncoming)
	requests.Get("/sent", middleware.RequirePermission(h.gate, "helpRequests.sent.view"), h.controller.ListSent)
	requests.Patch("/:id/respond", middleware.RequirePermission(h.gate, "helpRequests.inbox.respond"), h.controller.Respond)
}
