package realtime

import (
	common_models "leadcrm/internal/common/models"

	"github.com/gofiber/contrib/websocket"
	"go.uber.org/zap"
)

// principalLocalKey carries the resolved principal from the upgrade middleware
// to the websocket handler. It must stay a plain string: only string-keyed
// fiber locals are copied into the conn's locals at upgrade time.
const principalLocalKey = "realtime_principal"

// principalFromLocals reads the principal bound at handshake from the conn's
// locals. Returns nil when the upgrade middleware did not run or stored
// something unexpected.
func principalFromLocals(locals func(key string) interface{}) *common_models.Principal {
	p, _ := locals(principalLocalKey).(*common_models.Principal)
	return p
}

type WebSocketController struct {
	hub    *Hub
	logger *zap.Logger
}

func NewWebSocketController(hub *Hub, logger *zap.Logger) *WebSocketController {
	return &WebSocketController{
		hub:    hub,
		logger: logger,
	}
}

// HandleWebSocket runs after the upgrade middleware has verified the bearer
// credential and stored the resolved principal in the connection locals. The
// connection is bound to exactly one room derived from the principal's user
// id; membership is released when the read loop exits.
func (h *WebSocketController) HandleWebSocket(c *websocket.Conn) {
	principal := principalFromLocals(func(key string) interface{} { return c.Locals(key) })
	if principal == nil {
		c.Close()
		return
	}

	room := RoomForUser(principal.UserID.Hex())
	connID := h.hub.Register(room, principal.IsSystemAdmin, c)
	defer h.hub.Unregister(connID)

	// The mobile client only sends keepalives and delivery acks; the read
	// loop exists to detect disconnects.
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			h.logger.Debug("realtime connection closed", zap.String("room", room), zap.Error(err))
			break
		}
	}
}
