package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrUnknownStatus = errors.New("unknown status")

type BookingStatus string

const (
	// pending зарезервирован в схеме, сейчас бронирования сразу создаются подтверждёнными.
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusExpired   BookingStatus = "expired"
)

// ActiveBookingStatuses — статусы, которые занимают слот.
var ActiveBookingStatuses = []BookingStatus{BookingStatusPending, BookingStatusConfirmed}

// ParseBookingStatus проверяет, что строка является одним из известных статусов бронирования.
func ParseBookingStatus(s string) (BookingStatus, error) {
	switch st := BookingStatus(s); st {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCancelled,
		BookingStatusCompleted, BookingStatusExpired:
		return st, nil
	}
	return "", ErrUnknownStatus
}

// IsActive сообщает, занимает ли бронирование свой слот.
func (s BookingStatus) IsActive() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed:
		return true
	case BookingStatusCancelled, BookingStatusCompleted, BookingStatusExpired:
		return false
	}
	return false
}

// bookings
//
// Не более одного активного бронирования на слот: частичный уникальный
// индекс idx_bookings_active_slot создаётся в AutoMigrate.
type Booking struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	UserID uuid.UUID `gorm:"type:uuid;not null;index"`
	SlotID uuid.UUID `gorm:"type:uuid;not null;index"`
	// Дублирует врача слота для удобства выборок.
	DoctorID uuid.UUID `gorm:"type:uuid;not null;index"`

	Status             BookingStatus `gorm:"type:varchar(32);not null;index"`
	CancellationReason *string       `gorm:"type:text"`
	CancelledAt        *time.Time

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`

	User   *User   `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Slot   *Slot   `gorm:"foreignKey:SlotID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Doctor *Doctor `gorm:"foreignKey:DoctorID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

func (b *Booking) BeforeCreate(*gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
