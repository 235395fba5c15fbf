package repository

import (
	"context"

	"github.com/anjiri1684/tutor_marketplace/models"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PaymentRepository struct {
	db *gorm.DB
}

type PaymentFilter struct {
	Status    models.PaymentStatus
	StudentID uuid.UUID
	Page      Page
}

func (r *PaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(payment).Error; err != nil {
		return duplicateOr(err, "create payment")
	}
	return nil
}

// Save updates a payment. A provider reference already used by another
// payment is ErrDuplicate.
func (r *PaymentRepository) Save(ctx context.Context, payment *models.Payment) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Save(payment).Error; err != nil {
		return duplicateOr(err, "save payment")
	}
	return nil
}

func (r *PaymentRepository) FindByAssignment(ctx context.Context, assignmentID uuid.UUID) (*models.Payment, error) {
	var payment models.Payment
	if err := r.db.WithContext(ctx).Where("assignment_id = ?", assignmentID).First(&payment).Error; err != nil {
		return nil, notFoundOr(err, "find payment by assignment")
	}
	return &payment, nil
}

func (r *PaymentRepository) CountByAssignment(ctx context.Context, assignmentID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Payment{}).Where("assignment_id = ?", assignmentID).Count(&count).Error
	return count, errors.Wrap(err, "count payments by assignment")
}

// List returns payments newest-paid first with their assignment parties.
func (r *PaymentRepository) List(ctx context.Context, filter PaymentFilter) ([]models.Payment, int64, error) {
	page := filter.Page.normalize()

	var total int64
	if err := r.filtered(ctx, filter).Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count payments")
	}

	var payments []models.Payment
	err := r.filtered(ctx, filter).
		Preload("Assignment.Student.User").
		Preload("Assignment.Tutor.User").
		Order("payments.paid_at desc").
		Order("payments.created_at desc").
		Offset(page.offset()).
		Limit(page.Size).
		Find(&payments).Error
	if err != nil {
		return nil, 0, errors.Wrap(err, "list payments")
	}
	return payments, total, nil
}

func (r *PaymentRepository) filtered(ctx context.Context, filter PaymentFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.Payment{})
	if filter.Status != "" {
		query = query.Where("payments.status = ?", string(filter.Status))
	}
	if filter.StudentID != uuid.Nil {
		query = query.
			Joins("JOIN assignments ON assignments.id = payments.assignment_id").
			Where("assignments.student_id = ?", filter.StudentID)
	}
	return query
}

// SumPlatformFees totals the commission collected on succeeded payments.
func (r *PaymentRepository) SumPlatformFees(ctx context.Context) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("status = ?", string(models.PaymentSucceeded)).
		Select("COALESCE(SUM(platform_fee_collected), 0)").
		Row().
		Scan(&total)
	if err != nil {
		return 0, errors.Wrap(err, "sum platform fees")
	}
	return total, nil
}
