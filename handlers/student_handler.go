package handlers

import (
	"github.com/anjiri1684/tutor_marketplace/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type CheckoutRequest struct {
	AssignmentID string `json:"assignment_id" validate:"required,uuid"`
}

func (h *Handler) StudentAssignments(c *fiber.Ctx) error {
	studentID, err := h.actingStudent(c)
	if err != nil {
		return err
	}
	page := utils.ParsePage(c)
	assignments, total, err := h.ledger.ListStudentAssignments(c.UserContext(), studentID, page)
	if err != nil {
		return err
	}
	return utils.Paginated(c, assignments, page, total)
}

func (h *Handler) StudentPayments(c *fiber.Ctx) error {
	studentID, err := h.actingStudent(c)
	if err != nil {
		return err
	}
	page := utils.ParsePage(c)
	payments, total, err := h.ledger.ListStudentPayments(c.UserContext(), studentID, page)
	if err != nil {
		return err
	}
	return utils.Paginated(c, payments, page, total)
}

// CreateCheckoutSession starts payment for an accepted assignment and
// returns the processor's hosted checkout URL.
func (h *Handler) CreateCheckoutSession(c *fiber.Ctx) error {
	var req CheckoutRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}
	studentID, err := h.actingStudent(c)
	if err != nil {
		return err
	}

	result, err := h.ledger.BeginPayment(c.UserContext(), uuid.MustParse(req.AssignmentID), studentID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"session_id":  result.Session.ID,
		"session_url": result.Session.URL,
		"assignment":  result.Assignment,
	})
}

func (h *Handler) StudentCancelAssignment(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	studentID, err := h.actingStudent(c)
	if err != nil {
		return err
	}
	var req CancelRequest
	if len(c.Body()) > 0 {
		if err := h.bind(c, &req); err != nil {
			return err
		}
	}
	assignment, err := h.ledger.CancelByStudent(c.UserContext(), id, studentID, req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(assignment)
}
