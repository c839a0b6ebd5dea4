package alarm

import (
	"time"

	common_api "leadcrm/internal/common/api"
	"leadcrm/internal/common/validation"
	"leadcrm/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type AlarmController struct {
	service AlarmService
	logger  *zap.Logger
}

func NewAlarmController(service AlarmService, logger *zap.Logger) *AlarmController {
	return &AlarmController{
		service: service,
		logger:  logger,
	}
}

type CreateAlarmRequest struct {
	LeadID    string    `json:"lead_id" validate:"required"`
	AlarmTime time.Time `json:"alarm_time" validate:"required"`
	Notes     string    `json:"notes"`
}

type UpdateAlarmRequest struct {
	Status       *string    `json:"status"`
	SnoozedUntil *time.Time `json:"snoozed_until"`
	AlarmTime    *time.Time `json:"alarm_time"`
	Notes        *string    `json:"notes"`
}

func (c *AlarmController) Create(ctx *fiber.Ctx) error {
	principal := middleware.PrincipalFromCtx(ctx)
	if principal == nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	var req CreateAlarmRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validation.Struct(&req); err != nil {
		return common_api.RespondError(ctx, c.logger, err)
	}

	alarm, err := c.service.Create(ctx.Context(), principal, req.LeadID, req.AlarmTime, req.Notes)
	if err != nil {
		return common_api.RespondError(ctx, c.logger, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(alarm)
}

func (c *AlarmController) List(ctx *fiber.Ctx) error {
	principal := middleware.PrincipalFromCtx(ctx)
	if principal == nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	alarms, err := c.service.List(ctx.Context(), principal.UserID, ctx.Query("status"), int64(ctx.QueryInt("limit")))
	if err != nil {
		return common_api.RespondError(ctx, c.logger, err)
	}
	return ctx.JSON(fiber.Map{"data": alarms})
}

func (c *AlarmController) CountActive(ctx *fiber.Ctx) error {
	principal := middleware.PrincipalFromCtx(ctx)
	if principal == nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	count, err := c.service.CountActive(ctx.Context(), principal.UserID)
	if err != nil {
		return common_api.RespondError(ctx, c.logger, err)
	}
	return ctx.JSON(fiber.Map{"count": count})
}

func (c *AlarmController) Update(ctx *fiber.Ctx) error {
	principal := middleware.PrincipalFromCtx(ctx)
	if principal == nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	var req UpdateAlarmRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	input := UpdateInput{
		SnoozedUntil: req.SnoozedUntil,
		AlarmTime:    req.AlarmTime,
		Notes:        req.Notes,
	}
	if req.Status != nil {
		status := AlarmStatus(*req.Status)
		input.Status = &status
	}

	alarm, err := c.service.Update(ctx.Context(), ctx.Params("id"), principal.UserID, input)
	if err != nil {
		return common_api.RespondError(ctx, c.logger, err)
	}
	return ctx.JSON(alarm)
}

func (c *AlarmController) Delete(ctx *fiber.Ctx) error {
	principal := middleware.PrincipalFromCtx(ctx)
	if principal == nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	if err := c.service.Delete(ctx.Context(), ctx.Params("id"), principal.UserID); err != nil {
		return common_api.RespondError(ctx, c.logger, err)
	}
	return ctx.JSON(fiber.Map{"status": "success"})
}

func (c *AlarmController) GetForLead(ctx *fiber.Ctx) error {
	principal := middleware.PrincipalFromCtx(ctx)
	if principal == nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	alarm, err := c.service.GetForLead(ctx.Context(), ctx.Params("leadId"), principal.UserID)
	if err != nil {
		return common_api.RespondError(ctx, c.logger, err)
	}
	return ctx.JSON(fiber.Map{"data": alarm})
}
