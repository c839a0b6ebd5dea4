package dashboard

import (
	"leadcrm/internal/common/api"
	"leadcrm/internal/config"
	"leadcrm/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type DashboardApi struct {
	controller *DashboardController
	config     *config.Config
	resolver   middleware.PrincipalResolver
	gate       middleware.PermissionGate
}

func NewDashboardApi(controller *DashboardController, cfg *config.Config, resolver middleware.PrincipalResolver, gate middleware.PermissionGate) api.Route {
	return &DashboardApi{
		controller: controller,
		config:     cfg,
		resolver:   resolver,
		gate:       gate,
	}
}

// Setup registers dashboard routes
func (h *DashboardApi) Setup(app *fiber.App) {
	dash := app.Group("/api/dashboard", middleware.AuthMiddleware(h.resolver, h.config.SkipAuth))

	dash.Get("/overview", middleware.RequirePermission(h.gate, "dashboard.overview.view"), h.controller.GetOverview)
}
