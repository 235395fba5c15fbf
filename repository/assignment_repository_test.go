package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/anjiri1684/tutor_marketplace/models"
	"github.com/anjiri1684/tutor_marketplace/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func TestAssignmentRepository_FindByIDPreloadsParties(t *testing.T) {
	store := newStore(t)
	student := createStudent(t, store, "sam")
	tutor := createTutor(t, store, "tess")
	created := createAssignment(t, store, student, tutor)

	got, err := store.Assignments().FindByID(context.Background(), created.ID)
	require.NoError(t, err)

	assert.Equal(t, models.StatusPendingOffer, got.Status)
	require.NotNil(t, got.Student)
	require.NotNil(t, got.Student.User)
	assert.Equal(t, "sam", got.Student.Name)
	require.NotNil(t, got.Tutor)
	require.NotNil(t, got.Tutor.User)
	assert.Equal(t, models.RoleTutor, got.Tutor.User.Role)
}

func TestAssignmentRepository_FindByIDMissing(t *testing.T) {
	store := newStore(t)

	_, err := store.Assignments().FindByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestAssignmentRepository_TransitionStatus(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	assignment := createAssignment(t, store, createStudent(t, store, "sam"), createTutor(t, store, "tess"))

	require.NoError(t, store.Assignments().TransitionStatus(ctx, assignment.ID, models.StatusPendingOffer, models.StatusTutorAccepted, nil))

	err := store.Assignments().TransitionStatus(ctx, assignment.ID, models.StatusPendingOffer, models.StatusTutorDeclined, nil)
	assert.ErrorIs(t, err, repository.ErrStaleStatus)

	reason := "student changed plans"
	require.NoError(t, store.Assignments().TransitionStatus(ctx, assignment.ID, models.StatusTutorAccepted, models.StatusCanceled, &reason))

	got, err := store.Assignments().FindByID(ctx, assignment.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCanceled, got.Status)
	require.NotNil(t, got.StatusReason)
	assert.Equal(t, reason, *got.StatusReason)
}

func TestAssignmentRepository_TransitionStatusUnknownID(t *testing.T) {
	store := newStore(t)

	err := store.Assignments().TransitionStatus(context.Background(), uuid.New(), models.StatusPendingOffer, models.StatusTutorAccepted, nil)
	assert.ErrorIs(t, err, repository.ErrStaleStatus)
}

func newMockStore(t *testing.T) (*repository.Store, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	return repository.NewStore(db), mock
}

func TestAssignmentRepository_TransitionStatusIssuesConditionalUpdate(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(`(?s)^UPDATE "assignments" SET .*"status"=\$\d.*WHERE id = \$\d AND status = \$\d`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.Assignments().TransitionStatus(context.Background(), uuid.New(), models.StatusTutorAccepted, models.StatusPaymentPending, nil)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepository_TransitionStatusNoRowsIsStale(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(`^UPDATE "assignments" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.Assignments().TransitionStatus(context.Background(), uuid.New(), models.StatusPaymentPending, models.StatusInProgress, nil)
	assert.ErrorIs(t, err, repository.ErrStaleStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepository_TransitionStatusDBError(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(`^UPDATE "assignments" SET`).
		WillReturnError(errors.New("connection reset"))

	err := store.Assignments().TransitionStatus(context.Background(), uuid.New(), models.StatusPaymentPending, models.StatusInProgress, nil)
	require.Error(t, err)
	assert.NotErrorIs(t, err, repository.ErrStaleStatus)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestAssignmentRepository_ListFilters(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	sam := createStudent(t, store, "sam")
	ria := createStudent(t, store, "ria")
	tess := createTutor(t, store, "tess")

	first := createAssignment(t, store, sam, tess)
	createAssignment(t, store, sam, tess)
	createAssignment(t, store, ria, tess)
	require.NoError(t, store.Assignments().TransitionStatus(ctx, first.ID, models.StatusPendingOffer, models.StatusTutorAccepted, nil))

	all, total, err := store.Assignments().List(ctx, repository.AssignmentFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, int64(3), total)

	mine, total, err := store.Assignments().List(ctx, repository.AssignmentFilter{StudentID: sam.ID})
	require.NoError(t, err)
	assert.Len(t, mine, 2)
	assert.Equal(t, int64(2), total)

	accepted, _, err := store.Assignments().List(ctx, repository.AssignmentFilter{TutorID: tess.ID, ExcludeStatus: models.StatusPendingOffer})
	require.NoError(t, err)
	require.Len(t, accepted, 1)
	assert.Equal(t, first.ID, accepted[0].ID)

	pending, _, err := store.Assignments().List(ctx, repository.AssignmentFilter{Status: models.StatusPendingOffer})
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	paged, total, err := store.Assignments().List(ctx, repository.AssignmentFilter{Page: repository.Page{Number: 2, Size: 2}})
	require.NoError(t, err)
	assert.Len(t, paged, 1)
	assert.Equal(t, int64(3), total)
}

func TestAssignmentRepository_FindStalePaymentPending(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	sam := createStudent(t, store, "sam")
	tess := createTutor(t, store, "tess")

	stale := createAssignment(t, store, sam, tess)
	fresh := createAssignment(t, store, sam, tess)
	for _, a := range []*models.Assignment{stale, fresh} {
		require.NoError(t, store.Assignments().TransitionStatus(ctx, a.ID, models.StatusPendingOffer, models.StatusTutorAccepted, nil))
		require.NoError(t, store.Assignments().TransitionStatus(ctx, a.ID, models.StatusTutorAccepted, models.StatusPaymentPending, nil))
	}

	require.NoError(t, store.DB().Model(&models.Assignment{}).Where("id = ?", stale.ID).
		UpdateColumn("updated_at", time.Now().Add(-48*time.Hour)).Error)

	got, err := store.Assignments().FindStalePaymentPending(ctx, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, stale.ID, got[0].ID)
}

func TestAssignmentRepository_CountByStatus(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	sam := createStudent(t, store, "sam")
	tess := createTutor(t, store, "tess")

	a := createAssignment(t, store, sam, tess)
	createAssignment(t, store, sam, tess)
	require.NoError(t, store.Assignments().TransitionStatus(ctx, a.ID, models.StatusPendingOffer, models.StatusTutorDeclined, nil))

	counts, err := store.Assignments().CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[models.StatusPendingOffer])
	assert.Equal(t, int64(1), counts[models.StatusTutorDeclined])
	assert.Equal(t, int64(0), counts[models.StatusCompleted])
	assert.Len(t, counts, len(models.AssignmentStatuses))
}
