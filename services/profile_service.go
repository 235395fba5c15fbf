package services

import (
	"context"

	"github.com/anjiri1684/tutor_marketplace/apperr"
	"github.com/anjiri1684/tutor_marketplace/models"
	"github.com/anjiri1684/tutor_marketplace/repository"
	"github.com/google/uuid"
)

type ProfileService struct {
	store *repository.Store
}

func NewProfileService(store *repository.Store) *ProfileService {
	return &ProfileService{store: store}
}

// Nil fields are left unchanged.
type StudentProfileUpdate struct {
	Name              *string
	ContactNumber     *string
	PreferredSubjects *models.SubjectList
	BudgetMin         *float64
	BudgetMax         *float64
}

type TutorProfileUpdate struct {
	Name              *string
	ContactNumber     *string
	SubjectsTaught    *models.SubjectList
	ExperienceYears   *int
	DefaultHourlyRate *float64
	Availability      *models.OpaqueJSON
}

func (s *ProfileService) Me(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.store.Users().FindByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, "user not found")
	}
	return user, nil
}

func (s *ProfileService) UpdateStudent(ctx context.Context, userID uuid.UUID, in StudentProfileUpdate) (*models.StudentProfile, error) {
	profile, err := s.store.Profiles().FindStudentByUser(ctx, userID)
	if err != nil {
		return nil, notFound(err, "student profile not found")
	}

	if in.Name != nil {
		profile.Name = *in.Name
	}
	if in.ContactNumber != nil {
		profile.ContactNumber = *in.ContactNumber
	}
	if in.PreferredSubjects != nil {
		profile.PreferredSubjects = *in.PreferredSubjects
	}
	if in.BudgetMin != nil {
		profile.BudgetMin = in.BudgetMin
	}
	if in.BudgetMax != nil {
		profile.BudgetMax = in.BudgetMax
	}

	if (profile.BudgetMin != nil && *profile.BudgetMin < 0) || (profile.BudgetMax != nil && *profile.BudgetMax < 0) {
		return nil, apperr.Validation("budget cannot be negative")
	}
	if profile.BudgetMin != nil && profile.BudgetMax != nil && *profile.BudgetMin > *profile.BudgetMax {
		return nil, apperr.Validation("budget minimum cannot exceed budget maximum")
	}

	if err := s.store.Profiles().SaveStudent(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *ProfileService) UpdateTutor(ctx context.Context, userID uuid.UUID, in TutorProfileUpdate) (*models.TutorProfile, error) {
	profile, err := s.store.Profiles().FindTutorByUser(ctx, userID)
	if err != nil {
		return nil, notFound(err, "tutor profile not found")
	}

	if in.Name != nil {
		profile.Name = *in.Name
	}
	if in.ContactNumber != nil {
		profile.ContactNumber = *in.ContactNumber
	}
	if in.SubjectsTaught != nil {
		profile.SubjectsTaught = *in.SubjectsTaught
	}
	if in.ExperienceYears != nil {
		if *in.ExperienceYears < 0 {
			return nil, apperr.Validation("experience years cannot be negative")
		}
		profile.ExperienceYears = *in.ExperienceYears
	}
	if in.DefaultHourlyRate != nil {
		if *in.DefaultHourlyRate < 0 {
			return nil, apperr.Validation("hourly rate cannot be negative")
		}
		profile.DefaultHourlyRate = *in.DefaultHourlyRate
	}
	if in.Availability != nil {
		profile.Availability = *in.Availability
	}

	if err := s.store.Profiles().SaveTutor(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *ProfileService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.store.Users().List(ctx)
}

func (s *ProfileService) ListStudents(ctx context.Context) ([]models.StudentProfile, error) {
	return s.store.Profiles().ListStudents(ctx)
}

func (s *ProfileService) ListTutors(ctx context.Context) ([]models.TutorProfile, error) {
	return s.store.Profiles().ListTutors(ctx)
}

// StudentIDForUser resolves the acting student's profile id.
func (s *ProfileService) StudentIDForUser(ctx context.Context, userID uuid.UUID) (uuid.UUID, error) {
	profile, err := s.store.Profiles().FindStudentByUser(ctx, userID)
	if err != nil {
		return uuid.Nil, notFound(err, "student profile not found")
	}
	return profile.ID, nil
}

func (s *ProfileService) TutorIDForUser(ctx context.Context, userID uuid.UUID) (uuid.UUID, error) {
	profile, err := s.store.Profiles().FindTutorByUser(ctx, userID)
	if err != nil {
		return uuid.Nil, notFound(err, "tutor profile not found")
	}
	return profile.ID, nil
}
