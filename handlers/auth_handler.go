package handlers

import (
	"strings"

	"github.com/anjiri1684/tutor_marketplace/models"
	"github.com/anjiri1684/tutor_marketplace/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type RegisterRequest struct {
	Email    string                `json:"email" validate:"required,email"`
	Password string                `json:"password" validate:"required,min=6"`
	Role     string                `json:"role" validate:"required"`
	Profile  RegisterProfileFields `json:"profile"`
}

type RegisterProfileFields struct {
	Name              string             `json:"name" validate:"required"`
	ContactNumber     string             `json:"contact_number"`
	PreferredSubjects models.SubjectList `json:"preferred_subjects"`
	BudgetMin         *float64           `json:"budget_min"`
	BudgetMax         *float64           `json:"budget_max"`
	SubjectsTaught    models.SubjectList `json:"subjects_taught"`
	ExperienceYears   int                `json:"experience_years"`
	DefaultHourlyRate float64            `json:"default_hourly_rate"`
	Availability      models.OpaqueJSON  `json:"availability"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UserResponse struct {
	ID      uuid.UUID   `json:"id"`
	Email   string      `json:"email"`
	Role    models.Role `json:"role"`
	Profile any         `json:"profile"`
}

func newUserResponse(u *models.User) UserResponse {
	return UserResponse{ID: u.ID, Email: u.Email, Role: u.Role, Profile: u.Profile()}
}

func (h *Handler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}

	user, err := h.auth.Register(c.UserContext(), services.RegisterInput{
		Email:             req.Email,
		Password:          req.Password,
		Role:              models.Role(strings.ToUpper(req.Role)),
		Name:              req.Profile.Name,
		ContactNumber:     req.Profile.ContactNumber,
		PreferredSubjects: req.Profile.PreferredSubjects,
		BudgetMin:         req.Profile.BudgetMin,
		BudgetMax:         req.Profile.BudgetMax,
		SubjectsTaught:    req.Profile.SubjectsTaught,
		ExperienceYears:   req.Profile.ExperienceYears,
		DefaultHourlyRate: req.Profile.DefaultHourlyRate,
		Availability:      req.Profile.Availability,
	})
	if err != nil {
		return err
	}

	token, err := h.auth.IssueToken(user)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User registered successfully",
		"token":   token,
		"user":    newUserResponse(user),
	})
}

func (h *Handler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}

	token, user, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"token": token,
		"user":  newUserResponse(user),
	})
}
