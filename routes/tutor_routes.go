package routes

import (
	"github.com/anjiri1684/tutor_marketplace/handlers"
	"github.com/anjiri1684/tutor_marketplace/middleware"
	"github.com/anjiri1684/tutor_marketplace/models"
	"github.com/gofiber/fiber/v2"
)

func TutorRoutes(api fiber.Router, h *handlers.Handler, secret string) {
	tutor := api.Group("/tutor", middleware.Protected(secret), middleware.RequireRole(models.RoleTutor))

	tutor.Get("/assignments/offers", h.TutorOffers)
	tutor.Get("/assignments", h.TutorAssignments)
	tutor.Put("/assignments/:id/accept", h.AcceptOffer)
	tutor.Put("/assignments/:id/decline", h.DeclineOffer)
	tutor.Get("/payouts", h.TutorPayouts)
}
