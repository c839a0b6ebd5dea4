package user

import (
	common_api "leadcrm/internal/common/api"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type UserController struct {
	repo   UserRepository
	logger *zap.Logger
}

func NewUserController(repo UserRepository, logger *zap.Logger) *UserController {
	return &UserController{
		repo:   repo,
		logger: logger,
	}
}

// ListUsers returns tenant users as summaries. Used by dispatchers to pick a
// caller and by requesters to pick a help-request target.
func (c *UserController) ListUsers(ctx *fiber.Ctx) error {
	users, err := c.repo.FindAll(ctx.Context())
	if err != nil {
		return common_api.RespondError(ctx, c.logger, err)
	}

	summaries := make([]Summary, 0, len(users))
	for _, u := range users {
		summaries = append(summaries, u.Summary())
	}
	return ctx.JSON(fiber.Map{"data": summaries})
}
