package routes

import (
	"github.com/anjiri1684/tutor_marketplace/handlers"
	"github.com/gofiber/fiber/v2"
)

// Setup mounts every route group under /api/v1.
func Setup(app *fiber.App, h *handlers.Handler, secret string) {
	api := app.Group("/api/v1")

	PublicRoutes(app, api, h)
	AuthRoutes(api, h)
	ProfileRoutes(api, h, secret)
	AdminRoutes(api, h, secret)
	TutorRoutes(api, h, secret)
	StudentRoutes(api, h, secret)
	PaymentRoutes(api, h)
}
