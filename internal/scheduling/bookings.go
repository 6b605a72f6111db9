package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Leganyst/clinic-booking/internal/calendar"
	"github.com/Leganyst/clinic-booking/internal/model"
	"github.com/Leganyst/clinic-booking/internal/repository"
)

// Engine — жизненный цикл бронирований.
//
// На слот допускается не более одного активного (pending/confirmed) бронирования.
// Проверки статуса слота и наличия активной брони перед транзакцией дают
// понятные ошибки в обычном случае; гонки закрывает условное обновление
// статуса слота и частичный уникальный индекс idx_bookings_active_slot.
type Engine struct {
	tx     Transactor
	stores Stores
	opts   options
}

func NewEngine(tx Transactor, stores Stores, opts ...Option) *Engine {
	return &Engine{tx: tx, stores: stores, opts: buildOptions(opts)}
}

// Create бронирует свободный слот от имени actor.
func (e *Engine) Create(ctx context.Context, actor calendar.Principal, slotID uuid.UUID) (booking *model.Booking, err error) {
	ctx, done := e.opts.begin(ctx, "create_booking",
		attribute.String("slot_id", slotID.String()),
		attribute.String("user_id", actor.UserID.String()),
	)
	defer done(&err)

	slot, err := e.loadSlot(ctx, slotID)
	if err != nil {
		return nil, err
	}
	if slot.InPast(e.opts.now()) {
		return nil, invalidState(MsgBookPastSlot)
	}
	if slot.Status != model.SlotStatusAvailable {
		return nil, conflict(MsgSlotNotAvailable)
	}

	active, err := e.stores.Bookings.FindActiveBySlot(ctx, slotID, uuid.Nil)
	if err != nil {
		return nil, internal("check active booking", err)
	}
	if active != nil {
		return nil, conflict(MsgSlotAlreadyBooked)
	}

	doctor, err := e.stores.Doctors.GetByID(ctx, slot.DoctorID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFound(MsgDoctorNotFound)
	}
	if err != nil {
		return nil, internal("load doctor", err)
	}

	if _, err := e.stores.Users.GetByID(ctx, actor.UserID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound(MsgUserNotFound)
		}
		return nil, internal("load user", err)
	}

	booking = &model.Booking{
		UserID:   actor.UserID,
		SlotID:   slot.ID,
		DoctorID: doctor.ID,
		Status:   model.BookingStatusConfirmed,
	}

	err = e.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		ok, err := e.stores.Slots.TransitionStatus(ctx, slot.ID, model.SlotStatusAvailable, model.SlotStatusBooked)
		if err != nil {
			return internal("mark slot booked", err)
		}
		if !ok {
			return conflict(MsgSlotNotAvailable)
		}

		if err := e.stores.Bookings.Create(ctx, booking); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				e.opts.logger.Warn().Str("slot_id", slot.ID.String()).Msg("active booking index rejected insert")
				return conflict(MsgSlotAlreadyBooked)
			}
			return internal("insert booking", err)
		}

		return audit(ctx, e.stores.Events, model.EventTypeBookingCreated, actor.UserID, &booking.ID, &slot.ID,
			calendar.FormatSlot(slot.Day(), slot.StartTime, slot.EndTime))
	})
	if err != nil {
		return nil, err
	}

	e.opts.logger.Info().
		Str("booking_id", booking.ID.String()).
		Str("slot_id", slot.ID.String()).
		Str("user_id", actor.UserID.String()).
		Msg("booking created")

	return e.detailed(ctx, booking.ID)
}

// Cancel отменяет бронирование и освобождает слот. Доступно владельцу и администратору.
func (e *Engine) Cancel(ctx context.Context, actor calendar.Principal, bookingID uuid.UUID, reason *string) (booking *model.Booking, err error) {
	ctx, done := e.opts.begin(ctx, "cancel_booking", attribute.String("booking_id", bookingID.String()))
	defer done(&err)

	booking, err = e.loadBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.UserID != actor.UserID && !actor.IsAdmin() {
		return nil, forbidden(MsgNotOwner)
	}
	if err := ensureMutable(booking.Status); err != nil {
		return nil, err
	}

	slot, err := e.loadSlot(ctx, booking.SlotID)
	if err != nil {
		return nil, err
	}
	if slot.InPast(e.opts.now()) {
		return nil, invalidState(MsgCancelPastSlot)
	}

	err = e.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		// бронирование могли перенести или закрыть после чтения выше
		ok, err := e.stores.Bookings.Cancel(ctx, booking.ID, slot.ID, booking.Status, reason, e.opts.now().UTC())
		if err != nil {
			return internal("cancel booking", err)
		}
		if !ok {
			return conflict(MsgConcurrentUpdate)
		}

		if err := e.releaseSlot(ctx, slot.ID); err != nil {
			return err
		}

		details := calendar.FormatSlot(slot.Day(), slot.StartTime, slot.EndTime)
		if reason != nil && *reason != "" {
			details += "; reason: " + *reason
		}
		return audit(ctx, e.stores.Events, model.EventTypeBookingCancelled, actor.UserID, &booking.ID, &slot.ID, details)
	})
	if err != nil {
		return nil, err
	}

	return e.detailed(ctx, booking.ID)
}

// Reschedule переносит бронирование на другой свободный слот того же врача.
// Только владелец, администраторам переопределение не даётся.
func (e *Engine) Reschedule(ctx context.Context, actor calendar.Principal, bookingID, newSlotID uuid.UUID) (booking *model.Booking, err error) {
	ctx, done := e.opts.begin(ctx, "reschedule_booking",
		attribute.String("booking_id", bookingID.String()),
		attribute.String("new_slot_id", newSlotID.String()),
	)
	defer done(&err)

	booking, err = e.loadBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.UserID != actor.UserID {
		return nil, forbidden(MsgNotOwner)
	}
	if err := ensureMutable(booking.Status); err != nil {
		return nil, err
	}

	now := e.opts.now()
	current, err := e.loadSlot(ctx, booking.SlotID)
	if err != nil {
		return nil, err
	}
	if current.InPast(now) {
		return nil, invalidState(MsgReschedulePastSlot)
	}

	next, err := e.loadSlot(ctx, newSlotID)
	if err != nil {
		return nil, err
	}
	if next.InPast(now) {
		return nil, invalidState(MsgBookPastSlot)
	}
	if next.Status != model.SlotStatusAvailable {
		return nil, conflict(MsgSlotNotAvailable)
	}
	other, err := e.stores.Bookings.FindActiveBySlot(ctx, next.ID, booking.ID)
	if err != nil {
		return nil, internal("check active booking", err)
	}
	if other != nil {
		return nil, conflict(MsgSlotAlreadyBooked)
	}
	if next.DoctorID != booking.DoctorID {
		return nil, invalidState(MsgSameDoctor)
	}

	err = e.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		ok, err := e.stores.Slots.TransitionStatus(ctx, next.ID, model.SlotStatusAvailable, model.SlotStatusBooked)
		if err != nil {
			return internal("mark slot booked", err)
		}
		if !ok {
			return conflict(MsgSlotNotAvailable)
		}

		moved, err := e.stores.Bookings.MoveToSlot(ctx, booking.ID, current.ID, next.ID)
		if errors.Is(err, repository.ErrDuplicate) {
			e.opts.logger.Warn().Str("slot_id", next.ID.String()).Msg("active booking index rejected move")
			return conflict(MsgSlotAlreadyBooked)
		}
		if err != nil {
			return internal("move booking", err)
		}
		if !moved {
			return conflict(MsgConcurrentUpdate)
		}

		if err := e.releaseSlot(ctx, current.ID); err != nil {
			return err
		}

		details := fmt.Sprintf("%s -> %s",
			calendar.FormatSlot(current.Day(), current.StartTime, current.EndTime),
			calendar.FormatSlot(next.Day(), next.StartTime, next.EndTime))
		return audit(ctx, e.stores.Events, model.EventTypeBookingRescheduled, actor.UserID, &booking.ID, &next.ID, details)
	})
	if err != nil {
		return nil, err
	}

	return e.detailed(ctx, booking.ID)
}

// Complete отмечает приём состоявшимся. Слот остаётся booked.
func (e *Engine) Complete(ctx context.Context, actor calendar.Principal, bookingID uuid.UUID) (booking *model.Booking, err error) {
	ctx, done := e.opts.begin(ctx, "complete_booking", attribute.String("booking_id", bookingID.String()))
	defer done(&err)

	booking, err = e.loadBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := ensureMutable(booking.Status); err != nil {
		return nil, err
	}

	slot, err := e.loadSlot(ctx, booking.SlotID)
	if err != nil {
		return nil, err
	}
	if !slot.InPast(e.opts.now()) {
		return nil, invalidState(MsgCompleteFutureSlot)
	}

	err = e.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		ok, err := e.stores.Bookings.TransitionStatus(ctx, booking.ID, booking.Status, model.BookingStatusCompleted)
		if err != nil {
			return internal("complete booking", err)
		}
		if !ok {
			return conflict(MsgConcurrentUpdate)
		}
		return audit(ctx, e.stores.Events, model.EventTypeBookingCompleted, actor.UserID, &booking.ID, &slot.ID,
			calendar.FormatSlot(slot.Day(), slot.StartTime, slot.EndTime))
	})
	if err != nil {
		return nil, err
	}

	return e.detailed(ctx, booking.ID)
}

// ExpirePast переводит в expired все активные бронирования с прошедшими слотами.
// Слоты не трогает. Повторный запуск возвращает 0.
func (e *Engine) ExpirePast(ctx context.Context, actor calendar.Principal) (count int64, err error) {
	ctx, done := e.opts.begin(ctx, "expire_past_bookings")
	defer done(&err)

	now := e.opts.now()
	// прошедший слот не может быть позже сегодняшней локальной даты
	candidates, err := e.stores.Bookings.ListActiveUntil(ctx, calendar.DateOnly(now.In(time.Local)))
	if err != nil {
		return 0, internal("list active bookings", err)
	}

	ids := make([]uuid.UUID, 0, len(candidates))
	for _, b := range candidates {
		if b.Slot != nil && b.Slot.InPast(now) {
			ids = append(ids, b.ID)
		}
	}
	if len(ids) == 0 {
		return 0, nil
	}

	err = e.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		count, err = e.stores.Bookings.ExpireByIDs(ctx, ids)
		if err != nil {
			return internal("expire bookings", err)
		}
		return audit(ctx, e.stores.Events, model.EventTypeBookingsExpired, actor.UserID, nil, nil,
			fmt.Sprintf("expired %d bookings", count))
	})
	if err != nil {
		return 0, err
	}

	e.opts.metrics.AddBookingsExpired(count)
	e.opts.logger.Info().Int64("count", count).Msg("past bookings expired")
	return count, nil
}

// MyBookings возвращает бронирования текущего пользователя, новые первыми.
func (e *Engine) MyBookings(ctx context.Context, actor calendar.Principal, page calendar.PageRequest) (result calendar.Page[model.Booking], err error) {
	ctx, done := e.opts.begin(ctx, "my_bookings")
	defer done(&err)

	return e.list(ctx, repository.BookingFilter{UserID: &actor.UserID}, page)
}

// AllBookings возвращает все бронирования, опционально по статусу.
func (e *Engine) AllBookings(ctx context.Context, status string, page calendar.PageRequest) (result calendar.Page[model.Booking], err error) {
	ctx, done := e.opts.begin(ctx, "all_bookings")
	defer done(&err)

	var f repository.BookingFilter
	if status != "" {
		st, err := model.ParseBookingStatus(status)
		if err != nil {
			return result, Validation(FieldError{Field: "status", Message: "must be one of pending, confirmed, cancelled, completed, expired"})
		}
		f.Status = &st
	}
	return e.list(ctx, f, page)
}

func (e *Engine) list(ctx context.Context, f repository.BookingFilter, page calendar.PageRequest) (calendar.Page[model.Booking], error) {
	page = page.Normalize()
	items, total, err := e.stores.Bookings.List(ctx, f, page.PageSize, page.Offset())
	if err != nil {
		return calendar.Page[model.Booking]{}, internal("list bookings", err)
	}
	return calendar.NewPage(items, int(total), page), nil
}

// ensureMutable отсекает терминальные статусы, у каждого своё сообщение.
func ensureMutable(s model.BookingStatus) error {
	switch s {
	case model.BookingStatusPending, model.BookingStatusConfirmed:
		return nil
	case model.BookingStatusCancelled:
		return invalidState(MsgAlreadyCancelled)
	case model.BookingStatusCompleted:
		return invalidState(MsgAlreadyCompleted)
	case model.BookingStatusExpired:
		return invalidState(MsgAlreadyExpired)
	}
	return internal("check booking status", fmt.Errorf("%w: %q", model.ErrUnknownStatus, s))
}

// releaseSlot возвращает слот из booked в available.
// Заблокированный слот так не открывается.
func (e *Engine) releaseSlot(ctx context.Context, id uuid.UUID) error {
	ok, err := e.stores.Slots.TransitionStatus(ctx, id, model.SlotStatusBooked, model.SlotStatusAvailable)
	if err != nil {
		return internal("release slot", err)
	}
	if !ok {
		return conflict(MsgConcurrentUpdate)
	}
	return nil
}

func (e *Engine) loadSlot(ctx context.Context, id uuid.UUID) (*model.Slot, error) {
	slot, err := e.stores.Slots.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFound(MsgSlotNotFound)
	}
	if err != nil {
		return nil, internal("load slot", err)
	}
	return slot, nil
}

func (e *Engine) loadBooking(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	b, err := e.stores.Bookings.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFound(MsgBookingNotFound)
	}
	if err != nil {
		return nil, internal("load booking", err)
	}
	return b, nil
}

func (e *Engine) detailed(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	b, err := e.stores.Bookings.GetDetailed(ctx, id)
	if err != nil {
		return nil, internal("load booking details", err)
	}
	return b, nil
}
