package handlers

import (
	"github.com/anjiri1684/tutor_marketplace/apperr"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const signatureHeader = "Stripe-Signature"

// PaymentWebhook verifies and applies a processor event. A non-2xx answer
// makes the processor redeliver, so only failures worth retrying return 500.
func (h *Handler) PaymentWebhook(c *fiber.Ctx) error {
	event, err := h.processor.ParseEvent(c.Body(), c.Get(signatureHeader))
	if err != nil {
		h.log.Warn("rejected webhook", zap.Error(err))
		return apperr.Validation("webhook signature verification failed")
	}

	if err := h.reconciler.Handle(c.UserContext(), event); err != nil {
		h.log.Error("webhook processing failed",
			zap.String("event_id", event.ID),
			zap.String("event_type", event.Type),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"received": false})
	}
	return c.JSON(fiber.Map{"received": true})
}
