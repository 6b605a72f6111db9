package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/Leganyst/clinic-booking/internal/calendar"
)

// Статус слота расписания.
type SlotStatus string

const (
	SlotStatusAvailable SlotStatus = "available"
	SlotStatusBooked    SlotStatus = "booked"
	SlotStatusBlocked   SlotStatus = "blocked"
)

// ParseSlotStatus проверяет, что строка является одним из известных статусов слота.
func ParseSlotStatus(s string) (SlotStatus, error) {
	switch st := SlotStatus(s); st {
	case SlotStatusAvailable, SlotStatusBooked, SlotStatusBlocked:
		return st, nil
	}
	return "", ErrUnknownStatus
}

// slots
//
// Тройка (doctor_id, date, start_time) уникальна на уровне БД:
// на этом индексе держится идемпотентная генерация слотов.
type Slot struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	DoctorID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_slots_doctor_date_start,priority:1"`

	// Чистая дата без времени.
	Date      datatypes.Date `gorm:"not null;uniqueIndex:idx_slots_doctor_date_start,priority:2;index"`
	StartTime string         `gorm:"type:varchar(5);not null;uniqueIndex:idx_slots_doctor_date_start,priority:3"`
	EndTime   string         `gorm:"type:varchar(5);not null"`

	Status SlotStatus `gorm:"type:varchar(32);not null;index"`

	// Метка часового пояса, в арифметике не участвует.
	TimeZone string `gorm:"type:varchar(64);not null"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`

	Doctor *Doctor `gorm:"foreignKey:DoctorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (s *Slot) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// Day возвращает календарную дату слота.
func (s *Slot) Day() time.Time {
	return time.Time(s.Date)
}

// InPast сообщает, закончился ли слот к моменту now.
func (s *Slot) InPast(now time.Time) bool {
	return calendar.IsInPast(s.Day(), s.StartTime, s.EndTime, now)
}
