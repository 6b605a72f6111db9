package service

import (
	"time"
)

// Запросы и ответы CalendarService. Сериализуются JSON-кодеком.

type GenerateSlotsRequest struct {
	DoctorID            string `json:"doctorId" validate:"required,uuid"`
	StartDate           string `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate             string `json:"endDate" validate:"required,datetime=2006-01-02"`
	SlotDurationMinutes int    `json:"slotDurationMinutes,omitempty" validate:"omitempty,min=1,max=1440"`
	TimeZone            string `json:"timezone,omitempty" validate:"omitempty,timezone"`
}

type GenerateSlotsResponse struct {
	CreatedCount int64 `json:"createdCount"`
}

type ListAvailableSlotsRequest struct {
	DoctorID  string `json:"doctorId,omitempty" validate:"omitempty,uuid"`
	Date      string `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	StartDate string `json:"startDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	EndDate   string `json:"endDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

type ListDoctorSlotsRequest struct {
	DoctorID string `json:"doctorId" validate:"required,uuid"`
	Status   string `json:"status,omitempty" validate:"omitempty,oneof=available booked blocked"`
}

type SlotsResponse struct {
	Slots []Slot `json:"slots"`
}

type SlotRequest struct {
	SlotID string `json:"slotId" validate:"required,uuid"`
}

type SlotResponse struct {
	Slot Slot `json:"slot"`
}

type CreateBookingRequest struct {
	SlotID string `json:"slotId" validate:"required,uuid"`
}

type CancelBookingRequest struct {
	BookingID string  `json:"bookingId" validate:"required,uuid"`
	Reason    *string `json:"reason,omitempty" validate:"omitempty,max=500"`
}

type RescheduleBookingRequest struct {
	BookingID string `json:"bookingId" validate:"required,uuid"`
	NewSlotID string `json:"newSlotId" validate:"required,uuid"`
}

type CompleteBookingRequest struct {
	BookingID string `json:"bookingId" validate:"required,uuid"`
}

type BookingResponse struct {
	Booking Booking `json:"booking"`
}

type MyBookingsRequest struct {
	Page     int `json:"page,omitempty" validate:"omitempty,min=1"`
	PageSize int `json:"pageSize,omitempty" validate:"omitempty,min=1,max=100"`
}

type AllBookingsRequest struct {
	Status   string `json:"status,omitempty" validate:"omitempty,oneof=pending confirmed cancelled completed expired"`
	Page     int    `json:"page,omitempty" validate:"omitempty,min=1"`
	PageSize int    `json:"pageSize,omitempty" validate:"omitempty,min=1,max=100"`
}

type BookingsResponse struct {
	Bookings []Booking `json:"bookings"`
	Page     int       `json:"page"`
	PageSize int       `json:"pageSize"`
	Total    int       `json:"total"`
	HasNext  bool      `json:"hasNext"`
	HasPrev  bool      `json:"hasPrev"`
}

type ExpirePastBookingsResponse struct {
	Count int64 `json:"count"`
}

type Slot struct {
	ID        string `json:"id"`
	DoctorID  string `json:"doctorId"`
	Date      string `json:"date"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Status    string `json:"status"`
	TimeZone  string `json:"timezone"`
}

type Doctor struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Specialization string `json:"specialization,omitempty"`
}

type User struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

type Booking struct {
	ID                 string     `json:"id"`
	UserID             string     `json:"userId"`
	SlotID             string     `json:"slotId"`
	DoctorID           string     `json:"doctorId"`
	Status             string     `json:"status"`
	CancellationReason *string    `json:"cancellationReason,omitempty"`
	CancelledAt        *time.Time `json:"cancelledAt,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`

	Slot   *Slot   `json:"slot,omitempty"`
	Doctor *Doctor `json:"doctor,omitempty"`
	User   *User   `json:"user,omitempty"`
}
