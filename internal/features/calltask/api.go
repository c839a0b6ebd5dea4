package calltask

import (
	"leadcrm/internal/common/api"
	"leadcrm/internal/config"
	"leadcrm/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

// dispatchRoleNames is the coarse allow-list kept for tenants whose dispatcher
// roles predate fine-grained permission sets.
var dispatchRoleNames = []string{"Admin", "Manager", "Team Lead"}

type CallTaskApi struct {
	controller *CallTaskController
	config     *config.Config
	resolver   middleware.PrincipalResolver
	gate       middleware.PermissionGate
}

func NewCallTaskApi(controller *CallTaskController, cfg *config.Config, resolver middleware.PrincipalResolver, gate middleware.PermissionGate) api.Route {
	return &CallTaskApi{
		controller: controller,
		config:     cfg,
		resolver:   resolver,
		gate:       gate,
	}
}

// Setup registers call task routes
func (h *CallTaskApi) Setup(app *fiber.App) {
	tasks := app.Group("/api/call-tasks", middleware.AuthMiddleware(h.resolver, h.config.SkipAuth))

	tasks.Post("/", middleware.RequireRolesOrPermission(h.gate, dispatchRoleNames, "callTasks.tasks.create"), h.controller.CreateTask)
	tasks.Get("/pending", middleware.RequirePermission(h.gate, "callTasks.tasks.view"), h.controller.ListPending)
	tasks.Patch("/:id/ack", middleware.RequirePermission(h.gate, "callTasks.tasks.ack"), h.controller.Acknowledge)
	tasks.Patch("/:id/complete", middleware.RequirePermission(h.gate, "callTasks.tasks.complete"), h.controller.Complete)
}
