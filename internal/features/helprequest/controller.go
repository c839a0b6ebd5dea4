package helprequest

import (
	common_api "leadcrm/internal/common/api"
	"leadcrm/internal/common/validation"
	"leadcrm/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type HelpRequestController struct {
	service HelpRequestService
	logger  *zap.Logger
}

func NewHelpRequestController(service HelpRequestService, logger *zap.Logger) *HelpRequestController {
	return &HelpRequestController{
		service: service,
		logger:  logger,
	}
}

type CreateHelpRequestRequest struct {
	LeadID     string `json:"lead_id" validate:"required"`
	ToCallerID string `json:"to_caller_id" validate:"required"`
	Type       string `json:"type" validate:"required"`
	Reason     string `json:"reason"`
}

type RespondHelpRequestRequest struct {
	Action string `json:"action" validate:"required"`
}

func (c *HelpRequestController) Create(ctx *fiber.Ctx) error {
	principal := middleware.PrincipalFromCtx(ctx)
	if principal == nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	var req CreateHelpRequestRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validation.Struct(&req); err != nil {
		return common_api.RespondError(ctx, c.logger, err)
	}

	created, err := c.service.Create(ctx.Context(), principal, req.LeadID, req.ToCallerID, RequestType(req.Type), req.Reason)
	if err != nil {
		return common_api.RespondError(ctx, c.logger, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(created)
}

func (c *HelpRequestController) ListIncoming(ctx *fiber.Ctx) error {
	principal := middleware.PrincipalFromCtx(ctx)
	if principal == nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	requests, err := c.service.ListIncoming(ctx.Context(), principal.UserID, RequestStatus(ctx.Query("status")))
	if err != nil {
		return common_api.RespondError(ctx, c.logger, err)
	}
	return ctx.JSON(fiber.Map{"data": requests})
}

func (c *HelpRequestController) ListSent(ctx *fiber.Ctx) error {
	principal := middleware.PrincipalFromCtx(ctx)
	if principal == nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	requests, err := c.service.ListSent(ctx.Context(), principal.UserID, RequestStatus(ctx.Query("status")))
	if err != nil {
		return common_api.RespondError(ctx, c.logger, err)
	}
	return ctx.JSON(fiber.Map{"data": requests})
}

func (c *HelpRequestController) Respond(ctx *fiber.Ctx) error {
	principal := middleware.PrincipalFromCtx(ctx)
	if principal == nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	var req RespondHelpRequestRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validation.Struct(&req); err != nil {
		return common_api.RespondError(ctx, c.logger, err)
	}

	resolved, err := c.service.Respond(ctx.Context(), ctx.Params("id"), principal.UserID, req.Action)
	if err != nil {
		return common_api.RespondError(ctx, c.logger, err)
	}
	return ctx.JSON(resolved)
}
