package routes

import (
	"github.com/anjiri1684/tutor_marketplace/handlers"
	"github.com/anjiri1684/tutor_marketplace/middleware"
	"github.com/anjiri1684/tutor_marketplace/models"
	"github.com/gofiber/fiber/v2"
)

func StudentRoutes(api fiber.Router, h *handlers.Handler, secret string) {
	student := api.Group("/student", middleware.Protected(secret), middleware.RequireRole(models.RoleStudent))

	student.Get("/assignments", h.StudentAssignments)
	student.Post("/assignments/:id/cancel", h.StudentCancelAssignment)
	student.Get("/payments", h.StudentPayments)
	student.Post("/payments/create-checkout-session", h.CreateCheckoutSession)
}
