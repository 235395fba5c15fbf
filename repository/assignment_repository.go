package repository

import (
	"context"
	"time"

	"github.com/anjiri1684/tutor_marketplace/models"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AssignmentRepository struct {
	db *gorm.DB
}

type AssignmentFilter struct {
	Status    models.AssignmentStatus
	StudentID uuid.UUID
	TutorID   uuid.UUID
	// ExcludeStatus drops one status from the result, used for the tutor's
	// "accepted and later" view.
	ExcludeStatus models.AssignmentStatus
	Page          Page
}

func (r *AssignmentRepository) Create(ctx context.Context, assignment *models.Assignment) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(assignment).Error; err != nil {
		return errors.Wrap(err, "create assignment")
	}
	return nil
}

// FindByID loads an assignment with both profiles and their users.
func (r *AssignmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Assignment, error) {
	var assignment models.Assignment
	err := r.db.WithContext(ctx).
		Preload("Student.User").
		Preload("Tutor.User").
		Where("id = ?", id).
		First(&assignment).Error
	if err != nil {
		return nil, notFoundOr(err, "find assignment")
	}
	return &assignment, nil
}

// TransitionStatus moves an assignment from one status to another with a
// single conditional update. ErrStaleStatus means the stored status was no
// longer `from`, so another writer got there first.
func (r *AssignmentRepository) TransitionStatus(ctx context.Context, id uuid.UUID, from, to models.AssignmentStatus, reason *string) error {
	updates := map[string]any{
		"status":     string(to),
		"updated_at": time.Now(),
	}
	if reason != nil {
		updates["status_reason"] = *reason
	}

	res := r.db.WithContext(ctx).
		Model(&models.Assignment{}).
		Where("id = ? AND status = ?", id, string(from)).
		Updates(updates)
	if res.Error != nil {
		return errors.Wrapf(res.Error, "transition assignment %s to %s", id, to)
	}
	if res.RowsAffected == 0 {
		return ErrStaleStatus
	}
	return nil
}

// List returns one page of assignments matching the filter, newest first,
// together with the total number of matches.
func (r *AssignmentRepository) List(ctx context.Context, filter AssignmentFilter) ([]models.Assignment, int64, error) {
	page := filter.Page.normalize()

	query := r.filtered(ctx, filter)
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count assignments")
	}

	var assignments []models.Assignment
	err := r.filtered(ctx, filter).
		Preload("Student.User").
		Preload("Tutor.User").
		Preload("Payment").
		Preload("Payout").
		Order("created_at desc").
		Offset(page.offset()).
		Limit(page.Size).
		Find(&assignments).Error
	if err != nil {
		return nil, 0, errors.Wrap(err, "list assignments")
	}
	return assignments, total, nil
}

func (r *AssignmentRepository) filtered(ctx context.Context, filter AssignmentFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.Assignment{})
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}
	if filter.ExcludeStatus != "" {
		query = query.Where("status <> ?", string(filter.ExcludeStatus))
	}
	if filter.StudentID != uuid.Nil {
		query = query.Where("student_id = ?", filter.StudentID)
	}
	if filter.TutorID != uuid.Nil {
		query = query.Where("tutor_id = ?", filter.TutorID)
	}
	return query
}

// FindStalePaymentPending returns assignments that entered PAYMENT_PENDING
// before the cutoff and are still waiting.
func (r *AssignmentRepository) FindStalePaymentPending(ctx context.Context, cutoff time.Time) ([]models.Assignment, error) {
	var assignments []models.Assignment
	err := r.db.WithContext(ctx).
		Where("status = ? AND updated_at < ?", string(models.StatusPaymentPending), cutoff).
		Order("updated_at asc").
		Find(&assignments).Error
	return assignments, errors.Wrap(err, "find stale pending payments")
}

func (r *AssignmentRepository) CountByStatus(ctx context.Context) (map[models.AssignmentStatus]int64, error) {
	var rows []struct {
		Status models.AssignmentStatus
		Count  int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.Assignment{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "count assignments by status")
	}

	counts := make(map[models.AssignmentStatus]int64, len(models.AssignmentStatuses))
	for _, status := range models.AssignmentStatuses {
		counts[status] = 0
	}
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
