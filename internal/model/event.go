package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Тип события аудита.
type EventType string

const (
	EventTypeBookingCreated     EventType = "booking_created"
	EventTypeBookingCancelled   EventType = "booking_cancelled"
	EventTypeBookingRescheduled EventType = "booking_rescheduled"
	EventTypeBookingCompleted   EventType = "booking_completed"
	EventTypeBookingsExpired    EventType = "bookings_expired"
	EventTypeSlotBlocked        EventType = "slot_blocked"
	EventTypeSlotDeleted        EventType = "slot_deleted"
)

// events — события аудита. Пишутся в той же транзакции, что и изменение.
type Event struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	EventType EventType `gorm:"type:varchar(64);not null;index"`

	CreatedAt time.Time `gorm:"not null;index"`

	ActorID   *uuid.UUID `gorm:"type:uuid;index"`
	BookingID *uuid.UUID `gorm:"type:uuid;index"`
	SlotID    *uuid.UUID `gorm:"type:uuid;index"`

	Details string `gorm:"type:text"`
}

func (e *Event) BeforeCreate(*gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
