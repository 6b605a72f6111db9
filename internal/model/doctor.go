package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AvailabilityWindow — еженедельное окно приёма.
// Окна могут пересекаться, генератор обрабатывает каждое независимо.
type AvailabilityWindow struct {
	DayOfWeek int    `json:"dayOfWeek"` // 0 = воскресенье
	StartTime string `json:"startTime"` // HH:MM
	EndTime   string `json:"endTime"`   // HH:MM, строго после StartTime
}

// Doctor — врач. Справочник ведётся снаружи, ядро его только читает.
type Doctor struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	Name           string `gorm:"type:varchar(255);not null"`
	Specialization string `gorm:"type:varchar(255)"`
	Email          string `gorm:"type:varchar(255)"`
	Phone          string `gorm:"type:varchar(32)"`

	// Правила доступности храним JSON-ом (jsonb в Postgres).
	Availability datatypes.JSONSlice[AvailabilityWindow]

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (d *Doctor) BeforeCreate(*gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
