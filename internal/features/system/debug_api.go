package system

import (
	"leadcrm/internal/config"
	"leadcrm/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type DebugApi struct {
	controller *DebugController
	config     *config.Config
	resolver   middleware.PrincipalResolver
}

func NewDebugApi(controller *DebugController, cfg *config.Config, resolver middleware.PrincipalResolver) *DebugApi {
	return &DebugApi{
		controller: controller,
		config:     cfg,
		resolver:   resolver,
	}
}

// Setup registers debug routes
func (h *DebugApi) Setup(app *fiber.App) {
	debug := app.Group("/api/debug", middleware.AuthMiddleware(h.resolver, h.config.SkipAuth))
	debug.Get("/me", h.controller.GetCurrentUser)
}
