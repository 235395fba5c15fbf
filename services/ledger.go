package services

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/anjiri1684/tutor_marketplace/apperr"
	"github.com/anjiri1684/tutor_marketplace/models"
	"github.com/anjiri1684/tutor_marketplace/payments"
	"github.com/anjiri1684/tutor_marketplace/repository"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Notifier receives committed assignment status changes. Delivery is best
// effort and must not block the caller for long.
type Notifier interface {
	AssignmentChanged(ctx context.Context, event models.AssignmentEvent)
}

// Ledger owns the assignment workflow. Every status change is a conditional
// update on the stored status, so concurrent callers cannot both win.
type Ledger struct {
	store     *repository.Store
	processor payments.Processor
	notifier  Notifier
	log       *zap.Logger
	currency  string
	now       func() time.Time
}

func NewLedger(store *repository.Store, processor payments.Processor, notifier Notifier, log *zap.Logger, currency string) *Ledger {
	return &Ledger{
		store:     store,
		processor: processor,
		notifier:  notifier,
		log:       log.Named("ledger"),
		currency:  currency,
		now:       time.Now,
	}
}

type CreateAssignmentInput struct {
	StudentID         uuid.UUID
	TutorID           uuid.UUID
	Subject           string
	TotalFeeToStudent float64
	AdminSetTutorFee  float64
}

type CheckoutResult struct {
	Assignment *models.Assignment        `json:"assignment"`
	Session    *payments.CheckoutSession `json:"session"`
}

func (l *Ledger) CreateAssignment(ctx context.Context, in CreateAssignmentInput) (*models.Assignment, error) {
	subject := strings.TrimSpace(in.Subject)
	switch {
	case subject == "":
		return nil, apperr.Validation("subject is required")
	case !wholeCents(in.TotalFeeToStudent) || !wholeCents(in.AdminSetTutorFee):
		return nil, apperr.Validation("fees must be whole cents")
	}

	// Validate and store the cent values so the commission is their exact
	// difference.
	in.TotalFeeToStudent = roundCents(in.TotalFeeToStudent)
	in.AdminSetTutorFee = roundCents(in.AdminSetTutorFee)
	switch {
	case in.TotalFeeToStudent <= 0:
		return nil, apperr.Validation("total fee to student must be greater than zero")
	case in.AdminSetTutorFee < 0:
		return nil, apperr.Validation("tutor fee cannot be negative")
	case in.AdminSetTutorFee > in.TotalFeeToStudent:
		return nil, apperr.Validation("tutor fee cannot exceed the total fee to student")
	}

	if _, err := l.store.Profiles().FindStudent(ctx, in.StudentID); err != nil {
		return nil, notFound(err, "student not found")
	}
	if _, err := l.store.Profiles().FindTutor(ctx, in.TutorID); err != nil {
		return nil, notFound(err, "tutor not found")
	}

	assignment := &models.Assignment{
		StudentID:          in.StudentID,
		TutorID:            in.TutorID,
		Subject:            subject,
		TotalFeeToStudent:  in.TotalFeeToStudent,
		AdminSetTutorFee:   in.AdminSetTutorFee,
		PlatformCommission: roundCents(in.TotalFeeToStudent - in.AdminSetTutorFee),
		Status:             models.StatusPendingOffer,
	}
	if err := l.store.Assignments().Create(ctx, assignment); err != nil {
		return nil, err
	}

	l.log.Info("assignment created",
		zap.Stringer("assignment_id", assignment.ID),
		zap.Float64("total_fee", assignment.TotalFeeToStudent),
		zap.Float64("commission", assignment.PlatformCommission))
	return l.publish(ctx, assignment.ID)
}

func (l *Ledger) AcceptOffer(ctx context.Context, id, tutorID uuid.UUID) (*models.Assignment, error) {
	return l.decideOffer(ctx, id, tutorID, models.StatusTutorAccepted)
}

func (l *Ledger) DeclineOffer(ctx context.Context, id, tutorID uuid.UUID) (*models.Assignment, error) {
	return l.decideOffer(ctx, id, tutorID, models.StatusTutorDeclined)
}

func (l *Ledger) decideOffer(ctx context.Context, id, tutorID uuid.UUID, to models.AssignmentStatus) (*models.Assignment, error) {
	assignment, err := l.load(ctx, l.store, id)
	if err != nil {
		return nil, err
	}
	if assignment.TutorID != tutorID {
		return nil, apperr.NotFound("assignment not found")
	}
	if err := l.transition(ctx, l.store, assignment, models.StatusPendingOffer, to, nil); err != nil {
		return nil, err
	}
	return l.publish(ctx, id)
}

// BeginPayment moves an accepted assignment to PAYMENT_PENDING, records the
// pending payment and opens a checkout session. A processor failure rolls
// the whole step back.
func (l *Ledger) BeginPayment(ctx context.Context, id, studentID uuid.UUID) (*CheckoutResult, error) {
	var session *payments.CheckoutSession

	err := l.store.Transaction(ctx, func(tx *repository.Store) error {
		assignment, err := l.load(ctx, tx, id)
		if err != nil {
			return err
		}
		if assignment.StudentID != studentID {
			return apperr.NotFound("assignment not found")
		}
		if err := l.transition(ctx, tx, assignment, models.StatusTutorAccepted, models.StatusPaymentPending, nil); err != nil {
			return err
		}

		payment := &models.Payment{
			AssignmentID:  assignment.ID,
			AmountCharged: assignment.TotalFeeToStudent,
			Currency:      l.currency,
			Status:        models.PaymentPending,
		}
		if err := tx.Payments().Create(ctx, payment); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return apperr.Conflict("a payment already exists for this assignment")
			}
			return err
		}

		req := payments.CheckoutRequest{
			AssignmentID: assignment.ID,
			Subject:      assignment.Subject,
			Amount:       assignment.TotalFeeToStudent,
			Currency:     l.currency,
		}
		if assignment.Student != nil && assignment.Student.User != nil {
			req.CustomerRef = assignment.Student.User.Email
		}
		session, err = l.processor.CreateCheckout(ctx, req)
		if err != nil {
			return errors.Wrap(err, "create checkout session")
		}

		payment.ProviderRef = &session.ID
		return tx.Payments().Save(ctx, payment)
	})
	if err != nil {
		return nil, err
	}

	assignment, err := l.publish(ctx, id)
	if err != nil {
		return nil, err
	}
	return &CheckoutResult{Assignment: assignment, Session: session}, nil
}

// ConfirmPayment records a successful charge and starts the assignment.
// Repeated confirmations for an assignment that already started are no-ops.
func (l *Ledger) ConfirmPayment(ctx context.Context, id uuid.UUID, amountCharged float64, externalRef string) (*models.Assignment, error) {
	transitioned := false

	err := l.store.Transaction(ctx, func(tx *repository.Store) error {
		assignment, err := l.load(ctx, tx, id)
		if err != nil {
			return err
		}
		if paymentSettled(assignment.Status) {
			return nil
		}
		if err := l.transition(ctx, tx, assignment, models.StatusPaymentPending, models.StatusInProgress, nil); err != nil {
			return err
		}

		payment, err := tx.Payments().FindByAssignment(ctx, id)
		isNew := errors.Is(err, repository.ErrNotFound)
		if err != nil && !isNew {
			return err
		}
		if isNew {
			payment = &models.Payment{AssignmentID: id, Currency: l.currency}
		}

		paidAt := l.now()
		payment.Status = models.PaymentSucceeded
		payment.AmountCharged = amountCharged
		payment.PlatformFeeCollected = assignment.PlatformCommission
		payment.PaidAt = &paidAt
		payment.FailureReason = nil
		if externalRef != "" && payment.ProviderRef == nil {
			payment.ProviderRef = &externalRef
		}
		payment.AmountMismatch = payments.ToMinorUnits(amountCharged) != payments.ToMinorUnits(assignment.TotalFeeToStudent)
		if payment.AmountMismatch {
			l.log.Warn("charged amount differs from assignment fee",
				zap.Stringer("assignment_id", id),
				zap.Float64("charged", amountCharged),
				zap.Float64("expected", assignment.TotalFeeToStudent))
		}

		if isNew {
			err = tx.Payments().Create(ctx, payment)
		} else {
			err = tx.Payments().Save(ctx, payment)
		}
		if errors.Is(err, repository.ErrDuplicate) {
			return apperr.Validation("payment reference %s is already recorded on another payment", externalRef)
		}
		if err != nil {
			return err
		}
		transitioned = true
		return nil
	})
	if err != nil {
		return l.settledOr(ctx, id, err, paymentSettled)
	}
	if !transitioned {
		l.log.Debug("duplicate payment confirmation ignored", zap.Stringer("assignment_id", id))
		return l.load(ctx, l.store, id)
	}
	return l.publish(ctx, id)
}

// FailPayment cancels an assignment whose payment did not go through.
// Repeated failures for an already canceled assignment are no-ops.
func (l *Ledger) FailPayment(ctx context.Context, id uuid.UUID, reason string) (*models.Assignment, error) {
	transitioned := false

	err := l.store.Transaction(ctx, func(tx *repository.Store) error {
		assignment, err := l.load(ctx, tx, id)
		if err != nil {
			return err
		}
		if assignment.Status == models.StatusCanceled {
			return nil
		}
		if err := l.transition(ctx, tx, assignment, models.StatusPaymentPending, models.StatusCanceled, &reason); err != nil {
			return err
		}

		payment, err := tx.Payments().FindByAssignment(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			payment = &models.Payment{
				AssignmentID:  id,
				AmountCharged: assignment.TotalFeeToStudent,
				Currency:      l.currency,
				Status:        models.PaymentFailed,
				FailureReason: &reason,
			}
			err = tx.Payments().Create(ctx, payment)
		} else if err == nil {
			payment.Status = models.PaymentFailed
			payment.FailureReason = &reason
			err = tx.Payments().Save(ctx, payment)
		}
		if err != nil {
			return err
		}
		transitioned = true
		return nil
	})
	if err != nil {
		return l.settledOr(ctx, id, err, func(s models.AssignmentStatus) bool { return s == models.StatusCanceled })
	}
	if !transitioned {
		l.log.Debug("duplicate payment failure ignored", zap.Stringer("assignment_id", id))
		return l.load(ctx, l.store, id)
	}
	return l.publish(ctx, id)
}

// CompleteAssignment finishes an in-progress assignment and records the
// tutor's payout. At most one payout ever exists per assignment.
func (l *Ledger) CompleteAssignment(ctx context.Context, id uuid.UUID) (*models.Assignment, error) {
	transitioned := false

	err := l.store.Transaction(ctx, func(tx *repository.Store) error {
		assignment, err := l.load(ctx, tx, id)
		if err != nil {
			return err
		}
		if assignment.Status != models.StatusCompleted {
			if err := l.transition(ctx, tx, assignment, models.StatusInProgress, models.StatusCompleted, nil); err != nil {
				return err
			}
			transitioned = true
		}
		return l.ensurePayout(ctx, tx, assignment)
	})
	if err != nil {
		return l.settledOr(ctx, id, err, func(s models.AssignmentStatus) bool { return s == models.StatusCompleted })
	}
	if !transitioned {
		l.log.Debug("duplicate completion ignored", zap.Stringer("assignment_id", id))
		return l.load(ctx, l.store, id)
	}
	return l.publish(ctx, id)
}

func (l *Ledger) ensurePayout(ctx context.Context, tx *repository.Store, assignment *models.Assignment) error {
	count, err := tx.Payouts().CountByAssignment(ctx, assignment.ID)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	payout := &models.Payout{
		AssignmentID: assignment.ID,
		TutorID:      assignment.TutorID,
		Amount:       assignment.AdminSetTutorFee,
		Status:       models.PayoutPending,
		InitiatedAt:  l.now(),
	}
	if err := tx.Payouts().Create(ctx, payout); err != nil && !errors.Is(err, repository.ErrDuplicate) {
		return err
	}
	l.log.Info("payout initiated",
		zap.Stringer("assignment_id", assignment.ID),
		zap.Stringer("tutor_id", assignment.TutorID),
		zap.Float64("amount", payout.Amount))
	return nil
}

// Cancel ends any non-terminal assignment. A pending payment is marked failed.
func (l *Ledger) Cancel(ctx context.Context, id uuid.UUID, reason string) (*models.Assignment, error) {
	return l.cancel(ctx, id, reason, nil)
}

// CancelByStudent lets the owning student withdraw before the assignment has
// started.
func (l *Ledger) CancelByStudent(ctx context.Context, id, studentID uuid.UUID, reason string) (*models.Assignment, error) {
	return l.cancel(ctx, id, reason, func(a *models.Assignment) error {
		if a.StudentID != studentID {
			return apperr.NotFound("assignment not found")
		}
		if a.Status == models.StatusInProgress {
			return apperr.InvalidState("assignment is already in progress; contact support to cancel")
		}
		return nil
	})
}

func (l *Ledger) cancel(ctx context.Context, id uuid.UUID, reason string, guard func(*models.Assignment) error) (*models.Assignment, error) {
	if strings.TrimSpace(reason) == "" {
		reason = "canceled"
	}

	var openSession string
	err := l.store.Transaction(ctx, func(tx *repository.Store) error {
		assignment, err := l.load(ctx, tx, id)
		if err != nil {
			return err
		}
		if guard != nil {
			if err := guard(assignment); err != nil {
				return err
			}
		}
		if assignment.Status.IsTerminal() {
			return apperr.InvalidState("assignment is already %s", assignment.Status)
		}
		if err := l.transition(ctx, tx, assignment, assignment.Status, models.StatusCanceled, &reason); err != nil {
			return err
		}

		payment, err := tx.Payments().FindByAssignment(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if payment.Status != models.PaymentPending {
			return nil
		}
		if payment.ProviderRef != nil {
			openSession = *payment.ProviderRef
		}
		payment.Status = models.PaymentFailed
		payment.FailureReason = &reason
		return tx.Payments().Save(ctx, payment)
	})
	if err != nil {
		return nil, err
	}
	if openSession != "" {
		l.expireCheckout(ctx, id, openSession)
	}
	return l.publish(ctx, id)
}

// expireCheckout closes the checkout of a canceled assignment. A failure only
// leaves the session open until the processor expires it; a payment that
// still arrives is flagged for refund by the reconciler.
func (l *Ledger) expireCheckout(ctx context.Context, id uuid.UUID, sessionID string) {
	if err := l.processor.ExpireCheckout(ctx, sessionID); err != nil {
		l.log.Warn("could not expire checkout session",
			zap.Stringer("assignment_id", id),
			zap.String("session_id", sessionID),
			zap.Error(err))
	}
}

// AdminSetStatus routes an administrator's status request through the
// guarded operation that owns that transition.
func (l *Ledger) AdminSetStatus(ctx context.Context, id uuid.UUID, target models.AssignmentStatus, reason string) (*models.Assignment, error) {
	switch target {
	case models.StatusCompleted:
		return l.CompleteAssignment(ctx, id)
	case models.StatusCanceled:
		return l.Cancel(ctx, id, reason)
	case models.StatusInProgress:
		assignment, err := l.load(ctx, l.store, id)
		if err != nil {
			return nil, err
		}
		if assignment.Status != models.StatusPaymentPending && !paymentSettled(assignment.Status) {
			return nil, apperr.InvalidState("assignment is %s; only a pending payment can be confirmed", assignment.Status)
		}
		return l.ConfirmPayment(ctx, id, assignment.TotalFeeToStudent, "")
	case models.StatusTutorAccepted, models.StatusTutorDeclined:
		assignment, err := l.load(ctx, l.store, id)
		if err != nil {
			return nil, err
		}
		return l.decideOffer(ctx, id, assignment.TutorID, target)
	}
	if !target.Valid() {
		return nil, apperr.Validation("unknown status %q", target)
	}
	return nil, apperr.Validation("status %s cannot be set directly", target)
}

// MarkPayoutPaid records that the tutor has been paid. Marking a paid payout
// again returns it unchanged.
func (l *Ledger) MarkPayoutPaid(ctx context.Context, payoutID uuid.UUID) (*models.Payout, error) {
	payout, err := l.store.Payouts().FindByID(ctx, payoutID)
	if err != nil {
		return nil, notFound(err, "payout not found")
	}
	if payout.Status == models.PayoutPaid {
		return payout, nil
	}

	err = l.store.Payouts().MarkPaid(ctx, payoutID, l.now())
	if err != nil && !errors.Is(err, repository.ErrStaleStatus) {
		return nil, err
	}
	l.log.Info("payout marked paid", zap.Stringer("payout_id", payoutID))
	return l.store.Payouts().FindByID(ctx, payoutID)
}

// ExpireStalePayments fails every payment that has been pending for longer
// than olderThan and reports how many assignments were canceled.
func (l *Ledger) ExpireStalePayments(ctx context.Context, olderThan time.Duration) (int, error) {
	stale, err := l.store.Assignments().FindStalePaymentPending(ctx, l.now().Add(-olderThan))
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, assignment := range stale {
		if ctx.Err() != nil {
			return expired, ctx.Err()
		}
		updated, err := l.FailPayment(ctx, assignment.ID, "payment expired")
		if err != nil {
			l.log.Warn("could not expire payment", zap.Stringer("assignment_id", assignment.ID), zap.Error(err))
			continue
		}
		if updated.Status == models.StatusCanceled {
			expired++
		}
	}
	return expired, nil
}

// transition applies one guarded status change inside store. A lost race
// surfaces as a ConflictError.
func (l *Ledger) transition(ctx context.Context, store *repository.Store, a *models.Assignment, from, to models.AssignmentStatus, reason *string) error {
	if a.Status != from || !from.CanTransitionTo(to) {
		return apperr.InvalidState("assignment is %s; cannot move to %s", a.Status, to)
	}

	err := store.Assignments().TransitionStatus(ctx, a.ID, from, to, reason)
	if errors.Is(err, repository.ErrStaleStatus) {
		return apperr.Conflict("assignment was modified concurrently; reload and retry")
	}
	if err != nil {
		return err
	}

	l.log.Info("assignment transitioned",
		zap.Stringer("assignment_id", a.ID),
		zap.Stringer("from", from),
		zap.Stringer("to", to))
	a.Status = to
	a.StatusReason = reason
	return nil
}

func (l *Ledger) load(ctx context.Context, store *repository.Store, id uuid.UUID) (*models.Assignment, error) {
	assignment, err := store.Assignments().FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "assignment not found")
	}
	return assignment, nil
}

// settledOr turns a lost race into a no-op when the winner already moved the
// assignment to where this caller wanted it.
func (l *Ledger) settledOr(ctx context.Context, id uuid.UUID, err error, settled func(models.AssignmentStatus) bool) (*models.Assignment, error) {
	if !apperr.Is(err, apperr.KindConflict) {
		return nil, err
	}
	current, loadErr := l.load(ctx, l.store, id)
	if loadErr != nil || !settled(current.Status) {
		return nil, err
	}
	return current, nil
}

// publish reloads the assignment after commit and notifies listeners.
func (l *Ledger) publish(ctx context.Context, id uuid.UUID) (*models.Assignment, error) {
	assignment, err := l.load(ctx, l.store, id)
	if err != nil {
		return nil, err
	}
	if l.notifier != nil {
		l.notifier.AssignmentChanged(ctx, models.NewAssignmentEvent(assignment))
	}
	return assignment, nil
}

func paymentSettled(s models.AssignmentStatus) bool {
	return s == models.StatusInProgress || s == models.StatusCompleted
}

func notFound(err error, msg string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("%s", msg)
	}
	return err
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

// wholeCents reports whether v has at most two decimal places, allowing for
// binary float noise.
func wholeCents(v float64) bool {
	return math.Abs(v*100-math.Round(v*100)) < 1e-6
}
