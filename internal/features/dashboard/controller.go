package dashboard

import (
	common_api "leadcrm/internal/common/api"
	"leadcrm/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type DashboardController struct {
	service DashboardService
	logger  *zap.Logger
}

func NewDashboardController(service DashboardService, logger *zap.Logger) *DashboardController {
	return &DashboardController{
		service: service,
		logger:  logger,
	}
}

func (c *DashboardController) GetOverview(ctx *fiber.Ctx) error {
	principal := middleware.PrincipalFromCtx(ctx)
	if principal == nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	overview, err := c.service.GetOverview(ctx.Context(), principal.UserID)
	if err != nil {
		return common_api.RespondError(ctx, c.logger, err)
	}
	return ctx.JSON(overview)
}
