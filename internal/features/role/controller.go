package role

import (
	common_api "leadcrm/internal/common/api"
	"leadcrm/internal/common/validation"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type RoleController struct {
	service RoleService
	logger  *zap.Logger
}

func NewRoleController(service RoleService, logger *zap.Logger) *RoleController {
	return &RoleController{
		service: service,
		logger:  logger,
	}
}

type CreateRoleRequest struct {
	Name        string   `json:"name" validate:"required"`
	Description string   `json:"description"`
	Permissions []string `json:"permissions"`
}

type UpdateRoleRequest struct {
	Name        *string   `json:"name"`
	Description *string   `json:"description"`
	Permissions *[]string `json:"permissions"`
	IsActive    *bool     `json:"is_active"`
}

type DeleteRoleRequest struct {
	ReassignTo string `json:"reassign_to" validate:"required"`
}

func (c *RoleController) ListRoles(ctx *fiber.Ctx) error {
	roles, err := c.service.ListRoles(ctx.Context())
	if err != nil {
		return common_api.RespondError(ctx, c.logger, err)
	}
	return ctx.JSON(fiber.Map{"data": roles})
}

func (c *RoleController) GetRole(ctx *fiber.Ctx) error {
	role, err := c.service.GetRoleByID(ctx.Context(), ctx.Params("id"))
	if err != nil {
		return common_api.RespondError(ctx, c.logger, err)
	}
	return ctx.JSON(role)
}

func (c *RoleController) CreateRole(ctx *fiber.Ctx) error {
	var req CreateRoleRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validation.Struct(&req); err != nil {
		return common_api.RespondError(ctx, c.logger, err)
	}

	role, err := c.service.CreateRole(ctx.Context(), req.Name, req.Description, req.Permissions)
	if err != nil {
		return common_api.RespondError(ctx, c.logger, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(role)
}

func (c *RoleController) UpdateRole(ctx *fiber.Ctx) error {
	var req UpdateRoleRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	role, err := c.service.UpdateRole(ctx.Context(), ctx.Params("id"), UpdateRoleInput{
		Name:        req.Name,
		Description: req.Description,
		Permissions: req.Permissions,
		IsActive:    req.IsActive,
	})
	if err != nil {
		return common_api.RespondError(ctx, c.logger, err)
	}
	return ctx.JSON(role)
}

func (c *RoleController) DeleteRole(ctx *fiber.Ctx) error {
	var req DeleteRoleRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validation.Struct(&req); err != nil {
		return common_api.RespondError(ctx, c.logger, err)
	}

	reassigned, err := c.service.DeleteRole(ctx.Context(), ctx.Params("id"), req.ReassignTo)
	if err != nil {
		return common_api.RespondError(ctx, c.logger, err)
	}
	return ctx.JSON(fiber.Map{"status": "success", "reassigned_users": reassigned})
}
