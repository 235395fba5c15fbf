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

type PayoutRepository struct {
	db *gorm.DB
}

type PayoutFilter struct {
	Status  models.PayoutStatus
	TutorID uuid.UUID
	Page    Page
}

// Create inserts a payout. The unique assignment index turns a second payout
// for the same assignment into ErrDuplicate.
func (r *PayoutRepository) Create(ctx context.Context, payout *models.Payout) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(payout).Error; err != nil {
		return duplicateOr(err, "create payout")
	}
	return nil
}

func (r *PayoutRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Payout, error) {
	var payout models.Payout
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&payout).Error; err != nil {
		return nil, notFoundOr(err, "find payout")
	}
	return &payout, nil
}

func (r *PayoutRepository) FindByAssignment(ctx context.Context, assignmentID uuid.UUID) (*models.Payout, error) {
	var payout models.Payout
	if err := r.db.WithContext(ctx).Where("assignment_id = ?", assignmentID).First(&payout).Error; err != nil {
		return nil, notFoundOr(err, "find payout by assignment")
	}
	return &payout, nil
}

func (r *PayoutRepository) CountByAssignment(ctx context.Context, assignmentID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Payout{}).Where("assignment_id = ?", assignmentID).Count(&count).Error
	return count, errors.Wrap(err, "count payouts by assignment")
}

func (r *PayoutRepository) List(ctx context.Context, filter PayoutFilter) ([]models.Payout, int64, error) {
	page := filter.Page.normalize()

	var total int64
	if err := r.filtered(ctx, filter).Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count payouts")
	}

	var payouts []models.Payout
	err := r.filtered(ctx, filter).
		Preload("Assignment.Student").
		Preload("Tutor.User").
		Order("initiated_at desc").
		Offset(page.offset()).
		Limit(page.Size).
		Find(&payouts).Error
	if err != nil {
		return nil, 0, errors.Wrap(err, "list payouts")
	}
	return payouts, total, nil
}

func (r *PayoutRepository) filtered(ctx context.Context, filter PayoutFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.Payout{})
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}
	if filter.TutorID != uuid.Nil {
		query = query.Where("tutor_id = ?", filter.TutorID)
	}
	return query
}

// MarkPaid flips a PENDING payout to PAID. ErrStaleStatus means it was not
// pending.
func (r *PayoutRepository) MarkPaid(ctx context.Context, id uuid.UUID, paidAt time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&models.Payout{}).
		Where("id = ? AND status = ?", id, string(models.PayoutPending)).
		Updates(map[string]any{
			"status":  string(models.PayoutPaid),
			"paid_at": paidAt,
		})
	if res.Error != nil {
		return errors.Wrap(res.Error, "mark payout paid")
	}
	if res.RowsAffected == 0 {
		return ErrStaleStatus
	}
	return nil
}
