package services

import (
	"context"

	"github.com/anjiri1684/tutor_marketplace/models"
	"github.com/anjiri1684/tutor_marketplace/repository"
	"github.com/google/uuid"
)

func (l *Ledger) GetAssignment(ctx context.Context, id uuid.UUID) (*models.Assignment, error) {
	return l.load(ctx, l.store, id)
}

func (l *Ledger) ListAssignments(ctx context.Context, filter repository.AssignmentFilter) ([]models.Assignment, int64, error) {
	return l.store.Assignments().List(ctx, filter)
}

// ListTutorOffers returns the offers still waiting for the tutor's decision.
func (l *Ledger) ListTutorOffers(ctx context.Context, tutorID uuid.UUID, page repository.Page) ([]models.Assignment, int64, error) {
	return l.store.Assignments().List(ctx, repository.AssignmentFilter{
		TutorID: tutorID,
		Status:  models.StatusPendingOffer,
		Page:    page,
	})
}

// ListTutorAssignments returns everything the tutor has responded to.
func (l *Ledger) ListTutorAssignments(ctx context.Context, tutorID uuid.UUID, page repository.Page) ([]models.Assignment, int64, error) {
	return l.store.Assignments().List(ctx, repository.AssignmentFilter{
		TutorID:       tutorID,
		ExcludeStatus: models.StatusPendingOffer,
		Page:          page,
	})
}

func (l *Ledger) ListStudentAssignments(ctx context.Context, studentID uuid.UUID, page repository.Page) ([]models.Assignment, int64, error) {
	return l.store.Assignments().List(ctx, repository.AssignmentFilter{StudentID: studentID, Page: page})
}

func (l *Ledger) ListPayments(ctx context.Context, filter repository.PaymentFilter) ([]models.Payment, int64, error) {
	return l.store.Payments().List(ctx, filter)
}

func (l *Ledger) ListStudentPayments(ctx context.Context, studentID uuid.UUID, page repository.Page) ([]models.Payment, int64, error) {
	return l.store.Payments().List(ctx, repository.PaymentFilter{StudentID: studentID, Page: page})
}

func (l *Ledger) ListPayouts(ctx context.Context, filter repository.PayoutFilter) ([]models.Payout, int64, error) {
	return l.store.Payouts().List(ctx, filter)
}

func (l *Ledger) ListTutorPayouts(ctx context.Context, tutorID uuid.UUID, page repository.Page) ([]models.Payout, int64, error) {
	return l.store.Payouts().List(ctx, repository.PayoutFilter{TutorID: tutorID, Page: page})
}
