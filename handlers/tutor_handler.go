package handlers

import (
	"github.com/anjiri1684/tutor_marketplace/utils"
	"github.com/gofiber/fiber/v2"
)

// TutorOffers lists assignments still waiting for this tutor's decision.
func (h *Handler) TutorOffers(c *fiber.Ctx) error {
	tutorID, err := h.actingTutor(c)
	if err != nil {
		return err
	}
	page := utils.ParsePage(c)
	offers, total, err := h.ledger.ListTutorOffers(c.UserContext(), tutorID, page)
	if err != nil {
		return err
	}
	return utils.Paginated(c, offers, page, total)
}

func (h *Handler) TutorAssignments(c *fiber.Ctx) error {
	tutorID, err := h.actingTutor(c)
	if err != nil {
		return err
	}
	page := utils.ParsePage(c)
	assignments, total, err := h.ledger.ListTutorAssignments(c.UserContext(), tutorID, page)
	if err != nil {
		return err
	}
	return utils.Paginated(c, assignments, page, total)
}

func (h *Handler) AcceptOffer(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	tutorID, err := h.actingTutor(c)
	if err != nil {
		return err
	}
	assignment, err := h.ledger.AcceptOffer(c.UserContext(), id, tutorID)
	if err != nil {
		return err
	}
	return c.JSON(assignment)
}

func (h *Handler) DeclineOffer(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	tutorID, err := h.actingTutor(c)
	if err != nil {
		return err
	}
	assignment, err := h.ledger.DeclineOffer(c.UserContext(), id, tutorID)
	if err != nil {
		return err
	}
	return c.JSON(assignment)
}

func (h *Handler) TutorPayouts(c *fiber.Ctx) error {
	tutorID, err := h.actingTutor(c)
	if err != nil {
		return err
	}
	page := utils.ParsePage(c)
	payouts, total, err := h.ledger.ListTutorPayouts(c.UserContext(), tutorID, page)
	if err != nil {
		return err
	}
	return utils.Paginated(c, payouts, page, total)
}
