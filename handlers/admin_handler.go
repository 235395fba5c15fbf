package handlers

import (
	"strings"

	"github.com/anjiri1684/tutor_marketplace/apperr"
	"github.com/anjiri1684/tutor_marketplace/models"
	"github.com/anjiri1684/tutor_marketplace/repository"
	"github.com/anjiri1684/tutor_marketplace/services"
	"github.com/anjiri1684/tutor_marketplace/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type CreateAssignmentRequest struct {
	StudentID         string  `json:"student_id" validate:"required,uuid"`
	TutorID           string  `json:"tutor_id" validate:"required,uuid"`
	Subject           string  `json:"subject" validate:"required"`
	TotalFeeToStudent float64 `json:"total_fee_to_student" validate:"gt=0"`
	AdminSetTutorFee  float64 `json:"admin_set_tutor_fee" validate:"gte=0"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
	Reason string `json:"reason"`
}

type CancelRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) ListUsers(c *fiber.Ctx) error {
	users, err := h.profiles.ListUsers(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(users)
}

func (h *Handler) ListStudents(c *fiber.Ctx) error {
	students, err := h.profiles.ListStudents(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(students)
}

func (h *Handler) ListTutors(c *fiber.Ctx) error {
	tutors, err := h.profiles.ListTutors(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(tutors)
}

// ListAssignments accepts optional ?status=, ?student_id= and ?tutor_id=.
func (h *Handler) ListAssignments(c *fiber.Ctx) error {
	filter := repository.AssignmentFilter{Page: utils.ParsePage(c)}
	if status := c.Query("status"); status != "" {
		filter.Status = models.AssignmentStatus(strings.ToUpper(status))
		if !filter.Status.Valid() {
			return apperr.Validation("unknown status %q", status)
		}
	}
	var err error
	if filter.StudentID, err = queryID(c, "student_id"); err != nil {
		return err
	}
	if filter.TutorID, err = queryID(c, "tutor_id"); err != nil {
		return err
	}

	assignments, total, err := h.ledger.ListAssignments(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return utils.Paginated(c, assignments, filter.Page, total)
}

func (h *Handler) CreateAssignment(c *fiber.Ctx) error {
	var req CreateAssignmentRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}

	assignment, err := h.ledger.CreateAssignment(c.UserContext(), services.CreateAssignmentInput{
		StudentID:         uuid.MustParse(req.StudentID),
		TutorID:           uuid.MustParse(req.TutorID),
		Subject:           req.Subject,
		TotalFeeToStudent: req.TotalFeeToStudent,
		AdminSetTutorFee:  req.AdminSetTutorFee,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(assignment)
}

func (h *Handler) UpdateAssignmentStatus(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req UpdateStatusRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}

	target := models.AssignmentStatus(strings.ToUpper(req.Status))
	assignment, err := h.ledger.AdminSetStatus(c.UserContext(), id, target, req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(assignment)
}

func (h *Handler) CompleteAssignment(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	assignment, err := h.ledger.CompleteAssignment(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(assignment)
}

func (h *Handler) CancelAssignment(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req CancelRequest
	if len(c.Body()) > 0 {
		if err := h.bind(c, &req); err != nil {
			return err
		}
	}
	assignment, err := h.ledger.Cancel(c.UserContext(), id, req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(assignment)
}

func (h *Handler) ListPayments(c *fiber.Ctx) error {
	filter := repository.PaymentFilter{Page: utils.ParsePage(c)}
	if status := c.Query("status"); status != "" {
		filter.Status = models.PaymentStatus(strings.ToUpper(status))
	}
	payments, total, err := h.ledger.ListPayments(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return utils.Paginated(c, payments, filter.Page, total)
}

func (h *Handler) ListPayouts(c *fiber.Ctx) error {
	filter := repository.PayoutFilter{Page: utils.ParsePage(c)}
	if status := c.Query("status"); status != "" {
		filter.Status = models.PayoutStatus(strings.ToUpper(status))
	}
	var err error
	if filter.TutorID, err = queryID(c, "tutor_id"); err != nil {
		return err
	}
	payouts, total, err := h.ledger.ListPayouts(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return utils.Paginated(c, payouts, filter.Page, total)
}

func (h *Handler) MarkPayoutPaid(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	payout, err := h.ledger.MarkPayoutPaid(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(payout)
}

func (h *Handler) Stats(c *fiber.Ctx) error {
	stats, err := h.dashboard.Stats(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(stats)
}

func queryID(c *fiber.Ctx, name string) (uuid.UUID, error) {
	raw := c.Query(name)
	if raw == "" {
		return uuid.Nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperr.Validation("%s must be a valid id", name)
	}
	return id, nil
}
