package routes

import (
	"github.com/anjiri1684/tutor_marketplace/handlers"
	"github.com/gofiber/fiber/v2"
)

// PaymentRoutes is unauthenticated; the handler verifies the signature.
func PaymentRoutes(api fiber.Router, h *handlers.Handler) {
	api.Post("/payments/webhook", h.PaymentWebhook)
}
