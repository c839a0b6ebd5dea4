package auth

import (
	"leadcrm/internal/common/api"

	"github.com/gofiber/fiber/v2"
)

type AuthApi struct {
	controller *AuthController
}

func NewAuthApi(controller *AuthController) api.Route {
	return &AuthApi{
		controller: controller,
	}
}

func (h *AuthApi) Setup(app *fiber.App) {
	app.Post("/api/auth/login", h.controller.Login)
}
