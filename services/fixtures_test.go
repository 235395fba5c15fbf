package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/anjiri1684/tutor_marketplace/database/dbtest"
	"github.com/anjiri1684/tutor_marketplace/models"
	"github.com/anjiri1684/tutor_marketplace/payments"
	"github.com/anjiri1684/tutor_marketplace/repository"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
	"golang.org/x/crypto/bcrypt"
)

type fakeProcessor struct {
	mu        sync.Mutex
	calls     int
	err       error
	expired   []string
	expireErr error
}

func (f *fakeProcessor) CreateCheckout(_ context.Context, req payments.CheckoutRequest) (*payments.CheckoutSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	id := fmt.Sprintf("cs_test_%d_%s", f.calls, req.AssignmentID.String()[:8])
	return &payments.CheckoutSession{ID: id, URL: "https://checkout.test/" + id}, nil
}

func (f *fakeProcessor) ParseEvent([]byte, string) (*payments.Event, error) {
	return nil, errors.New("not supported")
}

func (f *fakeProcessor) ExpireCheckout(_ context.Context, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.expired = append(f.expired, sessionID)
	return f.expireErr
}

func (f *fakeProcessor) Expired() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.expired...)
}

func (f *fakeProcessor) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []models.AssignmentEvent
}

func (n *recordingNotifier) AssignmentChanged(_ context.Context, ev models.AssignmentEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ev)
}

func (n *recordingNotifier) statuses() []models.AssignmentStatus {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]models.AssignmentStatus, 0, len(n.events))
	for _, ev := range n.events {
		out = append(out, ev.Status)
	}
	return out
}

type ledgerFixture struct {
	store     *repository.Store
	ledger    *Ledger
	auth      *AuthService
	processor *fakeProcessor
	notifier  *recordingNotifier
	student   *models.StudentProfile
	tutor     *models.TutorProfile
}

func newLedgerFixture(t *testing.T) *ledgerFixture {
	t.Helper()

	log := zaptest.NewLogger(t)
	store := repository.NewStore(dbtest.Open(t))
	f := &ledgerFixture{
		store:     store,
		auth:      NewAuthService(store, "test-secret", 0, bcrypt.MinCost, log),
		processor: &fakeProcessor{},
		notifier:  &recordingNotifier{},
	}
	f.ledger = NewLedger(store, f.processor, f.notifier, log, "usd")
	f.student = f.registerStudent(t, "Sam Student")
	f.tutor = f.registerTutor(t, "Tess Tutor")
	return f
}

func (f *ledgerFixture) register(t *testing.T, name string, role models.Role) *models.User {
	t.Helper()
	user, err := f.auth.Register(context.Background(), RegisterInput{
		Email:    fmt.Sprintf("%s@example.com", uuid.NewString()),
		Password: "password123",
		Role:     role,
		Name:     name,
	})
	require.NoError(t, err)
	return user
}

func (f *ledgerFixture) registerStudent(t *testing.T, name string) *models.StudentProfile {
	t.Helper()
	return f.register(t, name, models.RoleStudent).Student
}

func (f *ledgerFixture) registerTutor(t *testing.T, name string) *models.TutorProfile {
	t.Helper()
	return f.register(t, name, models.RoleTutor).Tutor
}

func (f *ledgerFixture) offer(t *testing.T, total, tutorFee float64) *models.Assignment {
	t.Helper()
	assignment, err := f.ledger.CreateAssignment(context.Background(), CreateAssignmentInput{
		StudentID:         f.student.ID,
		TutorID:           f.tutor.ID,
		Subject:           "Calculus",
		TotalFeeToStudent: total,
		AdminSetTutorFee:  tutorFee,
	})
	require.NoError(t, err)
	return assignment
}

// awaitingPayment drives a fresh 500/400 assignment to PAYMENT_PENDING.
func (f *ledgerFixture) awaitingPayment(t *testing.T) *models.Assignment {
	t.Helper()
	ctx := context.Background()
	assignment := f.offer(t, 500, 400)
	_, err := f.ledger.AcceptOffer(ctx, assignment.ID, f.tutor.ID)
	require.NoError(t, err)
	res, err := f.ledger.BeginPayment(ctx, assignment.ID, f.student.ID)
	require.NoError(t, err)
	return res.Assignment
}

func (f *ledgerFixture) inProgress(t *testing.T) *models.Assignment {
	t.Helper()
	assignment := f.awaitingPayment(t)
	started, err := f.ledger.ConfirmPayment(context.Background(), assignment.ID, 500, "cs_paid_"+assignment.ID.String())
	require.NoError(t, err)
	return started
}

func (f *ledgerFixture) paymentFor(t *testing.T, id uuid.UUID) *models.Payment {
	t.Helper()
	payment, err := f.store.Payments().FindByAssignment(context.Background(), id)
	require.NoError(t, err)
	return payment
}

func pageOne() repository.Page {
	return repository.Page{Number: 1, Size: 20}
}

func repositoryFilterAll() repository.AssignmentFilter {
	return repository.AssignmentFilter{Page: pageOne()}
}

func paymentFilterFor(studentID uuid.UUID) repository.PaymentFilter {
	return repository.PaymentFilter{StudentID: studentID, Page: pageOne()}
}

// staleReadOnce makes the next load of assignment id report status instead of
// what is stored, as if the caller had read just before a competing writer
// committed. The guarded update that follows then finds the row moved on.
func (f *ledgerFixture) staleReadOnce(t *testing.T, id uuid.UUID, status models.AssignmentStatus) {
	t.Helper()
	var once sync.Once
	err := f.store.DB().Callback().Query().After("gorm:after_query").Register("test:stale_read", func(db *gorm.DB) {
		a, ok := db.Statement.Dest.(*models.Assignment)
		if !ok || db.Error != nil || a.ID != id {
			return
		}
		once.Do(func() { a.Status = status })
	})
	require.NoError(t, err)
}
