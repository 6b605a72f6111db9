package scheduling

import (
	"errors"
	"fmt"
	"strings"
)

// Kind — машиночитаемый класс ошибки, стабильный для клиентов.
type Kind string

const (
	KindInternal     Kind = "internal"
	KindValidation   Kind = "validation"
	KindNotFound     Kind = "not_found"
	KindForbidden    Kind = "forbidden"
	KindUnauthorized Kind = "unauthorized"
	KindConflict     Kind = "conflict"
	KindInvalidState Kind = "invalid_state"
)

// Сообщения, которые клиенты видят как есть.
const (
	MsgSlotNotFound       = "slot not found"
	MsgBookingNotFound    = "booking not found"
	MsgDoctorNotFound     = "doctor not found"
	MsgUserNotFound       = "user not found"
	MsgSlotNotAvailable   = "slot not available"
	MsgSlotAlreadyBooked  = "slot already booked"
	MsgBookPastSlot       = "cannot book a past slot"
	MsgCancelPastSlot     = "cannot cancel a past slot"
	MsgReschedulePastSlot = "cannot reschedule a past slot"
	MsgCompleteFutureSlot = "cannot complete a future slot"
	MsgSameDoctor         = "must be same doctor"
	MsgAlreadyCancelled   = "booking already cancelled"
	MsgAlreadyCompleted   = "booking already completed"
	MsgAlreadyExpired     = "booking already expired"
	MsgConcurrentUpdate   = "modified concurrently, retry"
	MsgNotOwner           = "not the booking owner"
	MsgSlotHasBooking     = "slot has an active booking"
	MsgSlotReferenced     = "slot has booking history"
	MsgInternal           = "internal error"
	msgValidationFallback = "validation failed"
)

// FieldError описывает ошибку конкретного поля запроса.
type FieldError struct {
	Field   string
	Message string
}

// Error — операционная ошибка ядра записи.
type Error struct {
	Kind    Kind
	Message string
	Fields  []FieldError
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if len(e.Fields) > 0 {
		parts := make([]string, 0, len(e.Fields))
		for _, f := range e.Fields {
			parts = append(parts, f.Field+": "+f.Message)
		}
		msg += " (" + strings.Join(parts, "; ") + ")"
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is сравнивает по Kind, так что errors.Is(err, ErrConflict) работает
// для любой ошибки этого класса.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

var (
	ErrValidation   = &Error{Kind: KindValidation}
	ErrNotFound     = &Error{Kind: KindNotFound}
	ErrForbidden    = &Error{Kind: KindForbidden}
	ErrUnauthorized = &Error{Kind: KindUnauthorized}
	ErrConflict     = &Error{Kind: KindConflict}
	ErrInvalidState = &Error{Kind: KindInvalidState}
)

// KindOf возвращает класс ошибки; всё незнакомое считается internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func newError(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func notFound(msg string) error     { return newError(KindNotFound, msg) }
func conflict(msg string) error     { return newError(KindConflict, msg) }
func invalidState(msg string) error { return newError(KindInvalidState, msg) }
func forbidden(msg string) error    { return newError(KindForbidden, msg) }

// Validation собирает ошибку валидации по полям.
func Validation(fields ...FieldError) error {
	return &Error{Kind: KindValidation, Message: msgValidationFallback, Fields: fields}
}

func internal(op string, err error) error {
	return &Error{Kind: KindInternal, Message: MsgInternal, Err: fmt.Errorf("%s: %w", op, err)}
}
