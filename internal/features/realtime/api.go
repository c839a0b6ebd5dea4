package realtime

import (
	"leadcrm/internal/common/api"
	"leadcrm/internal/middleware"
	"leadcrm/pkg/utils"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

type WebSocketApi struct {
	controller *WebSocketController
	resolver   middleware.PrincipalResolver
}

func NewWebSocketApi(controller *WebSocketController, resolver middleware.PrincipalResolver) api.Route {
	return &WebSocketApi{
		controller: controller,
		resolver:   resolver,
	}
}

func (h *WebSocketApi) Setup(app *fiber.App) {
	// Identity is bound at handshake: the bearer credential rides the query
	// string (browser WebSocket clients cannot set headers) and is verified
	// before the upgrade. Unauthenticated connections never reach a room.
	app.Use("/api/ws", func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}

		token := c.Query("token")
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "token required"})
		}

		claims, err := utils.ValidateToken(token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid token"})
		}

		principal, err := h.resolver.ResolvePrincipal(c.Context(), claims)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unable to resolve user context"})
		}

		c.Locals(principalLocalKey, principal)
		return c.Next()
	})

	app.Get("/api/ws", websocket.New(h.controller.HandleWebSocket))
}
