package routes

import (
	"github.com/anjiri1684/tutor_marketplace/handlers"
	"github.com/anjiri1684/tutor_marketplace/middleware"
	"github.com/anjiri1684/tutor_marketplace/models"
	"github.com/gofiber/fiber/v2"
)

func ProfileRoutes(api fiber.Router, h *handlers.Handler, secret string) {
	profile := api.Group("/profile", middleware.Protected(secret))
	profile.Get("/me", h.Me)
	profile.Put("/student", middleware.RequireRole(models.RoleStudent), h.UpdateStudentProfile)
	profile.Put("/tutor", middleware.RequireRole(models.RoleTutor), h.UpdateTutorProfile)
}
