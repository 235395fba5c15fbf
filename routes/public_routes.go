package routes

import (
	"github.com/anjiri1684/tutor_marketplace/handlers"
	"github.com/gofiber/fiber/v2"
)

func PublicRoutes(app *fiber.App, api fiber.Router, h *handlers.Handler) {
	app.Get("/health", h.Health)
	api.Get("/health", h.Health)

	api.Get("/ws", h.UpgradeWebSocket, h.StreamEvents())
}
