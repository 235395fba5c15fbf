package services

import (
	"context"
	"testing"

	"github.com/anjiri1684/tutor_marketplace/apperr"
	"github.com/anjiri1684/tutor_marketplace/models"
	"github.com/anjiri1684/tutor_marketplace/payments"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

type mockPaymentLedger struct {
	mock.Mock
}

func (m *mockPaymentLedger) ConfirmPayment(ctx context.Context, id uuid.UUID, amount float64, ref string) (*models.Assignment, error) {
	args := m.Called(ctx, id, amount, ref)
	a, _ := args.Get(0).(*models.Assignment)
	return a, args.Error(1)
}

func (m *mockPaymentLedger) FailPayment(ctx context.Context, id uuid.UUID, reason string) (*models.Assignment, error) {
	args := m.Called(ctx, id, reason)
	a, _ := args.Get(0).(*models.Assignment)
	return a, args.Error(1)
}

func TestReconciler_RoutesEvents(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	ledger := &mockPaymentLedger{}
	ledger.On("ConfirmPayment", ctx, id, 500.0, "cs_1").Return(&models.Assignment{ID: id, Status: models.StatusInProgress}, nil).Once()
	ledger.On("FailPayment", ctx, id, "checkout session expired").Return(&models.Assignment{ID: id, Status: models.StatusCanceled}, nil).Once()

	r := NewReconciler(ledger, zaptest.NewLogger(t))

	require.NoError(t, r.Handle(ctx, &payments.Event{ID: "evt_1", Kind: payments.EventPaymentSucceeded, AssignmentID: id.String(), Amount: 500, Reference: "cs_1"}))
	require.NoError(t, r.Handle(ctx, &payments.Event{ID: "evt_2", Kind: payments.EventPaymentFailed, AssignmentID: id.String(), Reason: "checkout session expired"}))
	require.NoError(t, r.Handle(ctx, &payments.Event{ID: "evt_3", Kind: payments.EventIgnored}))

	ledger.AssertExpectations(t)
}

func TestReconciler_AcknowledgesUnusableEvents(t *testing.T) {
	ctx := context.Background()
	missing := uuid.New()

	ledger := &mockPaymentLedger{}
	ledger.On("ConfirmPayment", ctx, missing, 500.0, "cs_1").Return(nil, apperr.NotFound("assignment not found"))
	ledger.On("FailPayment", ctx, missing, "payment failed").Return(nil, apperr.InvalidState("assignment is IN_PROGRESS"))

	r := NewReconciler(ledger, zaptest.NewLogger(t))

	assert.NoError(t, r.Handle(ctx, &payments.Event{Kind: payments.EventPaymentSucceeded, AssignmentID: "not-a-uuid"}))
	assert.NoError(t, r.Handle(ctx, &payments.Event{Kind: payments.EventPaymentSucceeded, AssignmentID: missing.String(), Amount: 500, Reference: "cs_1"}))
	assert.NoError(t, r.Handle(ctx, &payments.Event{Kind: payments.EventPaymentFailed, AssignmentID: missing.String(), Reason: "payment failed"}))
	ledger.AssertNumberOfCalls(t, "ConfirmPayment", 1)
}

func TestReconciler_ReturnsRetryableErrors(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	ledger := &mockPaymentLedger{}
	ledger.On("ConfirmPayment", ctx, id, 500.0, "cs_1").Return(nil, errors.New("database unavailable")).Once()
	ledger.On("FailPayment", ctx, id, "payment failed").Return(nil, apperr.Conflict("modified concurrently")).Once()

	r := NewReconciler(ledger, zaptest.NewLogger(t))

	assert.Error(t, r.Handle(ctx, &payments.Event{Kind: payments.EventPaymentSucceeded, AssignmentID: id.String(), Amount: 500, Reference: "cs_1"}))
	assert.Error(t, r.Handle(ctx, &payments.Event{Kind: payments.EventPaymentFailed, AssignmentID: id.String(), Reason: "payment failed"}))
}

func TestReconciler_DuplicateDeliveryAgainstLedger(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()
	assignment := f.awaitingPayment(t)
	r := NewReconciler(f.ledger, zaptest.NewLogger(t))

	ev := &payments.Event{ID: "evt_dup", Kind: payments.EventPaymentSucceeded, AssignmentID: assignment.ID.String(), Amount: 500, Reference: "cs_dup"}
	require.NoError(t, r.Handle(ctx, ev))
	require.NoError(t, r.Handle(ctx, ev))

	fail := &payments.Event{ID: "evt_late_fail", Kind: payments.EventPaymentFailed, AssignmentID: assignment.ID.String(), Reason: "payment failed"}
	require.NoError(t, r.Handle(ctx, fail))

	got, err := f.ledger.GetAssignment(ctx, assignment.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, got.Status)
	assert.Equal(t, models.PaymentSucceeded, f.paymentFor(t, assignment.ID).Status)
}

func TestReconciler_FlagsPaymentForCanceledAssignment(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	ledger := &mockPaymentLedger{}
	ledger.On("ConfirmPayment", ctx, id, 500.0, "cs_late").Return(nil, apperr.InvalidState("assignment is CANCELED")).Once()

	core, logs := observer.New(zapcore.InfoLevel)
	r := NewReconciler(ledger, zap.New(core))

	require.NoError(t, r.Handle(ctx, &payments.Event{ID: "evt_late", Kind: payments.EventPaymentSucceeded, AssignmentID: id.String(), Amount: 500, Reference: "cs_late"}))

	flagged := logs.FilterLevelExact(zapcore.ErrorLevel).FilterField(zap.Bool("refund_required", true)).All()
	require.Len(t, flagged, 1)
	assert.Equal(t, "cs_late", flagged[0].ContextMap()["reference"])
}

func TestReconciler_LatePaymentAfterCancel(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()
	pending := f.awaitingPayment(t)
	session := *f.paymentFor(t, pending.ID).ProviderRef

	_, err := f.ledger.Cancel(ctx, pending.ID, "student unreachable")
	require.NoError(t, err)
	assert.Equal(t, []string{session}, f.processor.Expired())

	r := NewReconciler(f.ledger, zaptest.NewLogger(t))
	require.NoError(t, r.Handle(ctx, &payments.Event{ID: "evt_late", Kind: payments.EventPaymentSucceeded, AssignmentID: pending.ID.String(), Amount: 500, Reference: session}))

	got, err := f.ledger.GetAssignment(ctx, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCanceled, got.Status)
	assert.Equal(t, models.PaymentFailed, f.paymentFor(t, pending.ID).Status)
}
