package repository

import (
	"context"

	"github.com/anjiri1684/tutor_marketplace/models"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository struct {
	db *gorm.DB
}

// Create inserts the user row only; profiles are created separately.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(user).Error
	if err != nil {
		return duplicateOr(err, "create user")
	}
	return nil
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, errors.Wrap(err, "count users by email")
	}
	return count > 0, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Preload("Student").
		Preload("Tutor").
		Where("email = ?", email).
		First(&user).Error
	if err != nil {
		return nil, notFoundOr(err, "find user by email")
	}
	return &user, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Preload("Student").
		Preload("Tutor").
		Where("id = ?", id).
		First(&user).Error
	if err != nil {
		return nil, notFoundOr(err, "find user by id")
	}
	return &user, nil
}

func (r *UserRepository) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Preload("Student").
		Preload("Tutor").
		Order("created_at desc").
		Find(&users).Error
	return users, errors.Wrap(err, "list users")
}

// CountByRole returns the number of users per role.
func (r *UserRepository) CountByRole(ctx context.Context) (map[models.Role]int64, error) {
	var rows []struct {
		Role  models.Role
		Count int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Select("role, COUNT(*) AS count").
		Group("role").
		Scan(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "count users by role")
	}

	counts := make(map[models.Role]int64, len(rows))
	for _, row := range rows {
		counts[row.Role] = row.Count
	}
	return counts, nil
}

// UpdateRole is the out-of-band promotion path used by cmd/makeadmin.
func (r *UserRepository) UpdateRole(ctx context.Context, email string, role models.Role) error {
	res := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("email = ?", email).
		Update("role", role)
	if res.Error != nil {
		return errors.Wrap(res.Error, "update user role")
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
