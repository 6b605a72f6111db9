package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Leganyst/clinic-booking/internal/calendar"
)

// users
type User struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	Name  string        `gorm:"type:varchar(255)"`
	Email string        `gorm:"type:varchar(255);uniqueIndex"`
	Phone string        `gorm:"type:varchar(32)"`
	Role  calendar.Role `gorm:"type:varchar(16);not null"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Role == "" {
		u.Role = calendar.RoleUser
	}
	return nil
}
