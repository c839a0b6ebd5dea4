package calltask

import (
	"time"

	common_api "leadcrm/internal/common/api"
	"leadcrm/internal/common/validation"
	"leadcrm/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type CallTaskController struct {
	service CallTaskService
	logger  *zap.Logger
}

func NewCallTaskController(service CallTaskService, logger *zap.Logger) *CallTaskController {
	return &CallTaskController{
		service: service,
		logger:  logger,
	}
}

type CreateCallTaskRequest struct {
	LeadID      string `json:"lead_id" validate:"required"`
	CallerID    string `json:"caller_id" validate:"required"`
	PhoneNumber string `json:"phone_number" validate:"required"`
}

type CompleteCallTaskRequest struct {
	StartedAt   time.Time `json:"started_at"`
	EndedAt     time.Time `json:"ended_at"`
	DurationSec int       `json:"duration_sec"`
	Outcome     string    `json:"outcome"`
}

func (c *CallTaskController) CreateTask(ctx *fiber.Ctx) error {
	var req CreateCallTaskRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validation.Struct(&req); err != nil {
		return common_api.RespondError(ctx, c.logger, err)
	}

	task, err := c.service.CreateTask(ctx.Context(), req.LeadID, req.CallerID, req.PhoneNumber)
	if err != nil {
		return common_api.RespondError(ctx, c.logger, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(task)
}

func (c *CallTaskController) ListPending(ctx *fiber.Ctx) error {
	principal := middleware.PrincipalFromCtx(ctx)
	if principal == nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	tasks, err := c.service.ListPending(ctx.Context(), principal.UserID)
	if err != nil {
		return common_api.RespondError(ctx, c.logger, err)
	}
	return ctx.JSON(fiber.Map{"data": tasks})
}

func (c *CallTaskController) Acknowledge(ctx *fiber.Ctx) error {
	principal := middleware.PrincipalFromCtx(ctx)
	if principal == nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	if err := c.service.Acknowledge(ctx.Context(), ctx.Params("id"), principal.UserID); err != nil {
		return common_api.RespondError(ctx, c.logger, err)
	}
	return ctx.JSON(fiber.Map{"status": "success"})
}

func (c *CallTaskController) Complete(ctx *fiber.Ctx) error {
	principal := middleware.PrincipalFromCtx(ctx)
	if principal == nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	var req CompleteCallTaskRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	err := c.service.Complete(ctx.Context(), ctx.Params("id"), principal.UserID, CompleteInput{
		StartedAt:   req.StartedAt,
		EndedAt:     req.EndedAt,
		DurationSec: req.DurationSec,
		Outcome:     req.Outcome,
	})
	if err != nil {
		return common_api.RespondError(ctx, c.logger, err)
	}
	return ctx.JSON(fiber.Map{"status": "success"})
}
