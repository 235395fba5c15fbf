package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StudentProfile struct {
	ID                uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	UserID            uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	Name              string      `gorm:"size:255;not null" json:"name"`
	ContactNumber     string      `gorm:"size:50" json:"contact_number"`
	PreferredSubjects SubjectList `gorm:"type:text" json:"preferred_subjects"`
	BudgetMin         *float64    `gorm:"type:numeric(10,2)" json:"budget_min"`
	BudgetMax         *float64    `gorm:"type:numeric(10,2)" json:"budget_max"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *StudentProfile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
