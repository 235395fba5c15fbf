package handlers

import (
	"github.com/anjiri1684/tutor_marketplace/middleware"
	"github.com/anjiri1684/tutor_marketplace/models"
	"github.com/anjiri1684/tutor_marketplace/services"
	"github.com/gofiber/fiber/v2"
)

type UpdateStudentProfileRequest struct {
	Name              *string             `json:"name" validate:"omitempty,min=1"`
	ContactNumber     *string             `json:"contact_number"`
	PreferredSubjects *models.SubjectList `json:"preferred_subjects"`
	BudgetMin         *float64            `json:"budget_min" validate:"omitempty,gte=0"`
	BudgetMax         *float64            `json:"budget_max" validate:"omitempty,gte=0"`
}

type UpdateTutorProfileRequest struct {
	Name              *string             `json:"name" validate:"omitempty,min=1"`
	ContactNumber     *string             `json:"contact_number"`
	SubjectsTaught    *models.SubjectList `json:"subjects_taught"`
	ExperienceYears   *int                `json:"experience_years" validate:"omitempty,gte=0"`
	DefaultHourlyRate *float64            `json:"default_hourly_rate" validate:"omitempty,gte=0"`
	Availability      *models.OpaqueJSON  `json:"availability"`
}

func (h *Handler) Me(c *fiber.Ctx) error {
	user, err := h.profiles.Me(c.UserContext(), middleware.CurrentUser(c).UserID)
	if err != nil {
		return err
	}
	return c.JSON(newUserResponse(user))
}

func (h *Handler) UpdateStudentProfile(c *fiber.Ctx) error {
	var req UpdateStudentProfileRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}

	profile, err := h.profiles.UpdateStudent(c.UserContext(), middleware.CurrentUser(c).UserID, services.StudentProfileUpdate{
		Name:              req.Name,
		ContactNumber:     req.ContactNumber,
		PreferredSubjects: req.PreferredSubjects,
		BudgetMin:         req.BudgetMin,
		BudgetMax:         req.BudgetMax,
	})
	if err != nil {
		return err
	}
	return c.JSON(profile)
}

func (h *Handler) UpdateTutorProfile(c *fiber.Ctx) error {
	var req UpdateTutorProfileRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}

	profile, err := h.profiles.UpdateTutor(c.UserContext(), middleware.CurrentUser(c).UserID, services.TutorProfileUpdate{
		Name:              req.Name,
		ContactNumber:     req.ContactNumber,
		SubjectsTaught:    req.SubjectsTaught,
		ExperienceYears:   req.ExperienceYears,
		DefaultHourlyRate: req.DefaultHourlyRate,
		Availability:      req.Availability,
	})
	if err != nil {
		return err
	}
	return c.JSON(profile)
}
