package handlers

import (
	"github.com/anjiri1684/tutor_marketplace/apperr"
	"github.com/anjiri1684/tutor_marketplace/middleware"
	"github.com/anjiri1684/tutor_marketplace/services"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// UpgradeWebSocket authenticates the ?token= query parameter before the
// protocol switch; browsers cannot set headers on the handshake.
func (h *Handler) UpgradeWebSocket(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	identity, err := h.auth.ParseToken(c.Query("token"))
	if err != nil {
		return apperr.Unauthorized("invalid or expired token")
	}
	middleware.SetCurrentUser(c, identity)
	return c.Next()
}

// StreamEvents keeps the connection registered until the client goes away.
// Inbound frames are read only to notice the close.
func (h *Handler) StreamEvents() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		identity, ok := conn.Locals(middleware.IdentityKey).(*services.Identity)
		if !ok {
			_ = conn.Close()
			return
		}
		h.hub.Register(identity.UserID, conn)
		defer h.hub.Unregister(identity.UserID, conn)

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				h.log.Debug("websocket closed", zap.Stringer("user_id", identity.UserID), zap.Error(err))
				return
			}
		}
	})
}
