package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentSucceeded PaymentStatus = "SUCCEEDED"
	PaymentFailed    PaymentStatus = "FAILED"
)

type Payment struct {
	ID                   uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	AssignmentID         uuid.UUID     `gorm:"type:uuid;not null;uniqueIndex" json:"assignment_id"`
	AmountCharged        float64       `gorm:"type:numeric(10,2);not null" json:"amount_charged"`
	Currency             string        `gorm:"size:3" json:"currency"`
	Status               PaymentStatus `gorm:"size:20;not null;index" json:"status"`
	ProviderRef          *string       `gorm:"size:255;uniqueIndex" json:"provider_ref,omitempty"`
	PlatformFeeCollected float64       `gorm:"type:numeric(10,2);not null;default:0" json:"platform_fee_collected"`
	AmountMismatch       bool          `gorm:"not null;default:false" json:"amount_mismatch"`
	FailureReason        *string       `gorm:"type:text" json:"failure_reason,omitempty"`
	PaidAt               *time.Time    `json:"paid_at"`

	Assignment *Assignment `gorm:"foreignKey:AssignmentID" json:"assignment,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
