package services

import (
	"context"

	"github.com/anjiri1684/tutor_marketplace/apperr"
	"github.com/anjiri1684/tutor_marketplace/models"
	"github.com/anjiri1684/tutor_marketplace/payments"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PaymentLedger is the part of the ledger that processor events drive.
type PaymentLedger interface {
	ConfirmPayment(ctx context.Context, id uuid.UUID, amountCharged float64, externalRef string) (*models.Assignment, error)
	FailPayment(ctx context.Context, id uuid.UUID, reason string) (*models.Assignment, error)
}

// Reconciler applies processor events to the ledger. The processor delivers
// at least once, so every path tolerates repeats.
type Reconciler struct {
	ledger PaymentLedger
	log    *zap.Logger
}

func NewReconciler(ledger PaymentLedger, log *zap.Logger) *Reconciler {
	return &Reconciler{ledger: ledger, log: log.Named("reconciler")}
}

// Handle returns an error only when the processor should retry delivery.
// Events that can never apply are logged and acknowledged.
func (r *Reconciler) Handle(ctx context.Context, ev *payments.Event) error {
	log := r.log.With(zap.String("event_id", ev.ID), zap.String("event_type", ev.Type))

	if ev.Kind == payments.EventIgnored {
		log.Debug("event ignored")
		return nil
	}

	id, err := uuid.Parse(ev.AssignmentID)
	if err != nil {
		log.Warn("event has no usable assignment id", zap.String("assignment_id", ev.AssignmentID))
		return nil
	}
	log = log.With(zap.Stringer("assignment_id", id))

	switch ev.Kind {
	case payments.EventPaymentSucceeded:
		_, err = r.ledger.ConfirmPayment(ctx, id, ev.Amount, ev.Reference)
	case payments.EventPaymentFailed:
		_, err = r.ledger.FailPayment(ctx, id, ev.Reason)
	}

	switch apperr.KindOf(err) {
	case apperr.KindInternal:
		if err != nil {
			log.Error("reconciliation failed", zap.Error(err))
			return err
		}
		log.Info("payment event applied")
		return nil
	case apperr.KindInvalidState:
		if ev.Kind == payments.EventPaymentSucceeded {
			// Money arrived for an assignment that can no longer start.
			log.Error("payment received for assignment that cannot start; refund required",
				zap.String("reference", ev.Reference),
				zap.Float64("amount", ev.Amount),
				zap.Bool("refund_required", true),
				zap.Error(err))
			return nil
		}
		log.Warn("payment event not applicable", zap.Error(err))
		return nil
	case apperr.KindNotFound, apperr.KindValidation:
		log.Warn("payment event not applicable", zap.Error(err))
		return nil
	default:
		log.Warn("payment event rejected", zap.Error(err))
		return err
	}
}
