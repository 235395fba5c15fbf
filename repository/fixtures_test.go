package repository_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/anjiri1684/tutor_marketplace/database/dbtest"
	"github.com/anjiri1684/tutor_marketplace/models"
	"github.com/anjiri1684/tutor_marketplace/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *repository.Store {
	t.Helper()
	return repository.NewStore(dbtest.Open(t))
}

func createStudent(t *testing.T, store *repository.Store, name string) *models.StudentProfile {
	t.Helper()
	ctx := context.Background()

	user := &models.User{Email: fmt.Sprintf("%s-%s@example.com", name, uuid.NewString()[:8]), PasswordHash: "x", Role: models.RoleStudent}
	require.NoError(t, store.Users().Create(ctx, user))

	profile := &models.StudentProfile{UserID: user.ID, Name: name, PreferredSubjects: models.SubjectList{"Math"}}
	require.NoError(t, store.Profiles().CreateStudent(ctx, profile))
	return profile
}

func createTutor(t *testing.T, store *repository.Store, name string) *models.TutorProfile {
	t.Helper()
	ctx := context.Background()

	user := &models.User{Email: fmt.Sprintf("%s-%s@example.com", name, uuid.NewString()[:8]), PasswordHash: "x", Role: models.RoleTutor}
	require.NoError(t, store.Users().Create(ctx, user))

	profile := &models.TutorProfile{UserID: user.ID, Name: name, SubjectsTaught: models.SubjectList{"Math"}, DefaultHourlyRate: 40}
	require.NoError(t, store.Profiles().CreateTutor(ctx, profile))
	return profile
}

func createAssignment(t *testing.T, store *repository.Store, student *models.StudentProfile, tutor *models.TutorProfile) *models.Assignment {
	t.Helper()

	assignment := &models.Assignment{
		StudentID:          student.ID,
		TutorID:            tutor.ID,
		Subject:            "Calculus",
		TotalFeeToStudent:  500,
		AdminSetTutorFee:   400,
		PlatformCommission: 100,
		Status:             models.StatusPendingOffer,
	}
	require.NoError(t, store.Assignments().Create(context.Background(), assignment))
	return assignment
}
