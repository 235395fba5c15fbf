package repository

import (
	"context"

	"github.com/anjiri1684/tutor_marketplace/models"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProfileRepository struct {
	db *gorm.DB
}

func (r *ProfileRepository) CreateStudent(ctx context.Context, profile *models.StudentProfile) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(profile).Error; err != nil {
		return duplicateOr(err, "create student profile")
	}
	return nil
}

func (r *ProfileRepository) CreateTutor(ctx context.Context, profile *models.TutorProfile) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(profile).Error; err != nil {
		return duplicateOr(err, "create tutor profile")
	}
	return nil
}

func (r *ProfileRepository) FindStudent(ctx context.Context, id uuid.UUID) (*models.StudentProfile, error) {
	var profile models.StudentProfile
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&profile).Error; err != nil {
		return nil, notFoundOr(err, "find student profile")
	}
	return &profile, nil
}

func (r *ProfileRepository) FindTutor(ctx context.Context, id uuid.UUID) (*models.TutorProfile, error) {
	var profile models.TutorProfile
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&profile).Error; err != nil {
		return nil, notFoundOr(err, "find tutor profile")
	}
	return &profile, nil
}

func (r *ProfileRepository) FindStudentByUser(ctx context.Context, userID uuid.UUID) (*models.StudentProfile, error) {
	var profile models.StudentProfile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, notFoundOr(err, "find student profile by user")
	}
	return &profile, nil
}

func (r *ProfileRepository) FindTutorByUser(ctx context.Context, userID uuid.UUID) (*models.TutorProfile, error) {
	var profile models.TutorProfile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, notFoundOr(err, "find tutor profile by user")
	}
	return &profile, nil
}

func (r *ProfileRepository) SaveStudent(ctx context.Context, profile *models.StudentProfile) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Save(profile).Error
	return errors.Wrap(err, "save student profile")
}

func (r *ProfileRepository) SaveTutor(ctx context.Context, profile *models.TutorProfile) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Save(profile).Error
	return errors.Wrap(err, "save tutor profile")
}

func (r *ProfileRepository) ListStudents(ctx context.Context) ([]models.StudentProfile, error) {
	var profiles []models.StudentProfile
	err := r.db.WithContext(ctx).
		Select("student_profiles.*").
		Preload("User").
		Joins("JOIN users ON users.id = student_profiles.user_id").
		Order("users.created_at desc").
		Find(&profiles).Error
	return profiles, errors.Wrap(err, "list student profiles")
}

func (r *ProfileRepository) ListTutors(ctx context.Context) ([]models.TutorProfile, error) {
	var profiles []models.TutorProfile
	err := r.db.WithContext(ctx).
		Select("tutor_profiles.*").
		Preload("User").
		Joins("JOIN users ON users.id = tutor_profiles.user_id").
		Order("users.created_at desc").
		Find(&profiles).Error
	return profiles, errors.Wrap(err, "list tutor profiles")
}
