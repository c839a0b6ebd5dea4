package lead

import (
	"errors"

	common_api "leadcrm/internal/common/api"
	"leadcrm/internal/middleware"
	"leadcrm/pkg/apperr"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type LeadController struct {
	repo   LeadRepository
	logger *zap.Logger
}

func NewLeadController(repo LeadRepository, logger *zap.Logger) *LeadController {
	return &LeadController{
		repo:   repo,
		logger: logger,
	}
}

// ListAccessible returns the leads the caller owns or shares. Admins see the
// same scoped list here; cross-user listings are a reporting concern, not a
// dispatch one.
func (c *LeadController) ListAccessible(ctx *fiber.Ctx) error {
	principal := middleware.PrincipalFromCtx(ctx)
	if principal == nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	leads, err := c.repo.FindAccessibleTo(ctx.Context(), principal.UserID)
	if err != nil {
		return common_api.RespondError(ctx, c.logger, err)
	}
	if leads == nil {
		leads = []Lead{}
	}

	type listItem struct {
		Lead
		DisplayName string `json:"display_name"`
	}
	items := make([]listItem, 0, len(leads))
	for _, l := range leads {
		items = append(items, listItem{Lead: l, DisplayName: l.DisplayName()})
	}
	return ctx.JSON(fiber.Map{"data": items})
}

func (c *LeadController) GetLead(ctx *fiber.Ctx) error {
	principal := middleware.PrincipalFromCtx(ctx)
	if principal == nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	id := ctx.Params("id")
	l, err := c.repo.FindByID(ctx.Context(), id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return common_api.RespondError(ctx, c.logger, apperr.NotFound("lead %s not found", id))
		}
		return common_api.RespondError(ctx, c.logger, err)
	}
	// Inaccessible reads as absent so detail probing cannot confirm existence.
	if !principal.IsSystemAdmin && !l.AccessibleTo(principal.UserID) {
		return common_api.RespondError(ctx, c.logger, apperr.NotFound("lead %s not found", id))
	}
	return ctx.JSON(l)
}
