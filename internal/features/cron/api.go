package cron_feature

import (
	"leadcrm/internal/common/api"
	"leadcrm/internal/config"
	"leadcrm/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type CronApi struct {
	service CronService
	config  *config.Config
	gate    middleware.PermissionGate
}

func NewCronApi(service CronService, cfg *config.Config, gate middleware.PermissionGate) api.Route {
	return &CronApi{
		service: service,
		config:  cfg,
		gate:    gate,
	}
}

// Setup registers the server-to-server trigger routes. Authenticated by the
// shared service key, which resolves to an admin-equivalent principal and
// still passes through the authorization gate.
func (h *CronApi) Setup(app *fiber.App) {
	internal := app.Group("/api/internal", middleware.ServiceKeyMiddleware(h.config))

	internal.Post("/scan-alarms", middleware.RequirePermission(h.gate, "alarms.alarms.view"), h.TriggerScan)
}

func (h *CronApi) TriggerScan(ctx *fiber.Ctx) error {
	h.service.ScanDueAlarms(ctx.Context())
	return ctx.JSON(fiber.Map{"status": "success"})
}
