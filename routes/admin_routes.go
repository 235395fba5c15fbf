package routes

import (
	"github.com/anjiri1684/tutor_marketplace/handlers"
	"github.com/anjiri1684/tutor_marketplace/middleware"
	"github.com/anjiri1684/tutor_marketplace/models"
	"github.com/gofiber/fiber/v2"
)

func AdminRoutes(api fiber.Router, h *handlers.Handler, secret string) {
	admin := api.Group("/admin", middleware.Protected(secret), middleware.RequireRole(models.RoleAdmin))

	admin.Get("/users", h.ListUsers)
	admin.Get("/students", h.ListStudents)
	admin.Get("/tutors", h.ListTutors)
	admin.Get("/stats", h.Stats)

	assignments := admin.Group("/assignments")
	assignments.Get("", h.ListAssignments)
	assignments.Post("", h.CreateAssignment)
	assignments.Put("/:id/status", h.UpdateAssignmentStatus)
	assignments.Post("/:id/complete", h.CompleteAssignment)
	assignments.Post("/:id/cancel", h.CancelAssignment)

	admin.Get("/payments", h.ListPayments)
	admin.Get("/payouts", h.ListPayouts)
	admin.Post("/payouts/:id/mark-paid", h.MarkPayoutPaid)
}
