package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Assignment is a brokered engagement between one student and one tutor.
// PlatformCommission is fixed when the row is created.
type Assignment struct {
	ID                 uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	StudentID          uuid.UUID        `gorm:"type:uuid;not null;index" json:"student_id"`
	TutorID            uuid.UUID        `gorm:"type:uuid;not null;index" json:"tutor_id"`
	Subject            string           `gorm:"size:255;not null" json:"subject"`
	TotalFeeToStudent  float64          `gorm:"type:numeric(10,2);not null" json:"total_fee_to_student"`
	AdminSetTutorFee   float64          `gorm:"type:numeric(10,2);not null" json:"admin_set_tutor_fee"`
	PlatformCommission float64          `gorm:"type:numeric(10,2);not null" json:"platform_commission"`
	Status             AssignmentStatus `gorm:"size:20;not null;default:'PENDING_OFFER';index" json:"status"`
	StatusReason       *string          `gorm:"type:text" json:"status_reason,omitempty"`

	Student *StudentProfile `gorm:"foreignKey:StudentID" json:"student,omitempty"`
	Tutor   *TutorProfile   `gorm:"foreignKey:TutorID" json:"tutor,omitempty"`
	Payment *Payment        `gorm:"foreignKey:AssignmentID" json:"payment,omitempty"`
	Payout  *Payout         `gorm:"foreignKey:AssignmentID" json:"payout,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (a *Assignment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
