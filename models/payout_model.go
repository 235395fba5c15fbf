package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PayoutStatus string

const (
	PayoutPending PayoutStatus = "PENDING"
	PayoutPaid    PayoutStatus = "PAID"
)

// Payout is money owed to a tutor for one completed assignment.
type Payout struct {
	ID           uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	AssignmentID uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex" json:"assignment_id"`
	TutorID      uuid.UUID    `gorm:"type:uuid;not null;index" json:"tutor_id"`
	Amount       float64      `gorm:"type:numeric(10,2);not null" json:"amount"`
	Status       PayoutStatus `gorm:"size:20;not null;default:'PENDING'" json:"status"`
	InitiatedAt  time.Time    `gorm:"not null" json:"initiated_at"`
	PaidAt       *time.Time   `json:"paid_at"`

	Assignment *Assignment   `gorm:"foreignKey:AssignmentID" json:"assignment,omitempty"`
	Tutor      *TutorProfile `gorm:"foreignKey:TutorID" json:"tutor,omitempty"`
}

func (p *Payout) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
