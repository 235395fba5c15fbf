package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TutorProfile struct {
	ID                uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	UserID            uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	Name              string      `gorm:"size:255;not null" json:"name"`
	ContactNumber     string      `gorm:"size:50" json:"contact_number"`
	SubjectsTaught    SubjectList `gorm:"type:text" json:"subjects_taught"`
	ExperienceYears   int         `gorm:"not null;default:0" json:"experience_years"`
	DefaultHourlyRate float64     `gorm:"type:numeric(10,2);not null;default:0" json:"default_hourly_rate"`
	Availability      OpaqueJSON  `gorm:"type:text" json:"availability"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *TutorProfile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
