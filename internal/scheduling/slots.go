package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/datatypes"

	"github.com/Leganyst/clinic-booking/internal/calendar"
	"github.com/Leganyst/clinic-booking/internal/model"
	"github.com/Leganyst/clinic-booking/internal/repository"
)

// SlotService: генерация слотов по шаблону доступности и административные действия над ними.
type SlotService struct {
	tx     Transactor
	stores Stores
	opts   options
}

func NewSlotService(tx Transactor, stores Stores, opts ...Option) *SlotService {
	return &SlotService{tx: tx, stores: stores, opts: buildOptions(opts)}
}

// Параметры генерации. Даты в формате YYYY-MM-DD.
type GenerateParams struct {
	DoctorID            uuid.UUID
	StartDate           string
	EndDate             string
	SlotDurationMinutes int
	TimeZone            string
}

// Generate разворачивает недельный шаблон врача в слоты на [StartDate, EndDate]
// и возвращает число реально созданных слотов. Повторный вызов на тот же
// диапазон ничего не создаёт и не падает.
func (s *SlotService) Generate(ctx context.Context, actor calendar.Principal, p GenerateParams) (created int64, err error) {
	ctx, done := s.opts.begin(ctx, "generate_slots", attribute.String("doctor_id", p.DoctorID.String()))
	defer done(&err)

	from, to, err := s.parseRange(p.StartDate, p.EndDate)
	if err != nil {
		return 0, err
	}

	minutes := p.SlotDurationMinutes
	if minutes < 0 {
		return 0, Validation(FieldError{Field: "slotDurationMinutes", Message: "must be at least 1"})
	}
	if minutes == 0 {
		minutes = s.opts.defaultSlotMinutes
	}
	tz := p.TimeZone
	if tz == "" {
		tz = s.opts.defaultTimeZone
	}

	doctor, err := s.stores.Doctors.GetByID(ctx, p.DoctorID)
	if errors.Is(err, repository.ErrNotFound) {
		return 0, notFound(MsgDoctorNotFound)
	}
	if err != nil {
		return 0, internal("load doctor", err)
	}

	occurrences, err := calendar.ExpandWeekly(s.weeklyWindows(doctor), from, to, time.Duration(minutes)*time.Minute)
	if err != nil {
		return 0, internal("expand availability", err)
	}

	slots := make([]model.Slot, 0, len(occurrences))
	for _, occ := range occurrences {
		slots = append(slots, model.Slot{
			DoctorID:  doctor.ID,
			Date:      datatypes.Date(occ.Date),
			StartTime: occ.Range.Start.String(),
			EndTime:   occ.Range.End.String(),
			Status:    model.SlotStatusAvailable,
			TimeZone:  tz,
		})
	}

	created, err = s.stores.Slots.InsertIfAbsent(ctx, slots)
	if err != nil {
		return 0, internal("insert slots", err)
	}
	s.opts.metrics.AddSlotsGenerated(created)

	s.opts.logger.Info().
		Str("doctor_id", doctor.ID.String()).
		Str("actor_id", actor.UserID.String()).
		Str("from", p.StartDate).
		Str("to", p.EndDate).
		Int("considered", len(slots)).
		Int64("created", created).
		Msg("slots generated")

	return created, nil
}

// weeklyWindows переводит окна доступности врача в календарные.
// Битые окна пропускаются с предупреждением.
func (s *SlotService) weeklyWindows(d *model.Doctor) []calendar.WeeklyWindow {
	windows := make([]calendar.WeeklyWindow, 0, len(d.Availability))
	for i, w := range d.Availability {
		if w.DayOfWeek < 0 || w.DayOfWeek > 6 {
			s.opts.logger.Warn().Str("doctor_id", d.ID.String()).Int("window", i).Int("day_of_week", w.DayOfWeek).Msg("skip availability window: bad day of week")
			continue
		}
		r, err := calendar.ParseClockRange(w.StartTime, w.EndTime)
		if err != nil {
			s.opts.logger.Warn().Err(err).Str("doctor_id", d.ID.String()).Int("window", i).Msg("skip availability window")
			continue
		}
		windows = append(windows, calendar.WeeklyWindow{Weekday: time.Weekday(w.DayOfWeek), Window: r})
	}
	return windows
}

func (s *SlotService) parseRange(start, end string) (time.Time, time.Time, error) {
	var fields []FieldError
	from, err := calendar.ParseDate(start)
	if err != nil {
		fields = append(fields, FieldError{Field: "startDate", Message: "must be a date in YYYY-MM-DD format"})
	}
	to, err := calendar.ParseDate(end)
	if err != nil {
		fields = append(fields, FieldError{Field: "endDate", Message: "must be a date in YYYY-MM-DD format"})
	}
	if len(fields) > 0 {
		return time.Time{}, time.Time{}, Validation(fields...)
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, Validation(FieldError{Field: "endDate", Message: "must not be before startDate"})
	}
	if days := int(to.Sub(from).Hours()/24) + 1; days > s.opts.maxRangeDays {
		return time.Time{}, time.Time{}, Validation(FieldError{
			Field:   "endDate",
			Message: fmt.Sprintf("range must not exceed %d days", s.opts.maxRangeDays),
		})
	}
	return from, to, nil
}

// Фильтр свободных слотов. Date исключает StartDate/EndDate.
type AvailableQuery struct {
	DoctorID  *uuid.UUID
	Date      string
	StartDate string
	EndDate   string
}

// ListAvailable возвращает свободные и ещё не прошедшие слоты.
// Без дат выдаёт слоты начиная с сегодняшнего дня.
func (s *SlotService) ListAvailable(ctx context.Context, q AvailableQuery) (slots []model.Slot, err error) {
	ctx, done := s.opts.begin(ctx, "list_available_slots")
	defer done(&err)

	now := s.opts.now()
	status := model.SlotStatusAvailable
	f := repository.SlotFilter{DoctorID: q.DoctorID, Status: &status}

	switch {
	case q.Date != "":
		d, err := calendar.ParseDate(q.Date)
		if err != nil {
			return nil, Validation(FieldError{Field: "date", Message: "must be a date in YYYY-MM-DD format"})
		}
		f.From, f.To = &d, &d
	case q.StartDate != "" || q.EndDate != "":
		var fields []FieldError
		if q.StartDate != "" {
			d, err := calendar.ParseDate(q.StartDate)
			if err != nil {
				fields = append(fields, FieldError{Field: "startDate", Message: "must be a date in YYYY-MM-DD format"})
			}
			f.From = &d
		}
		if q.EndDate != "" {
			d, err := calendar.ParseDate(q.EndDate)
			if err != nil {
				fields = append(fields, FieldError{Field: "endDate", Message: "must be a date in YYYY-MM-DD format"})
			}
			f.To = &d
		}
		if len(fields) > 0 {
			return nil, Validation(fields...)
		}
		if f.From != nil && f.To != nil && f.To.Before(*f.From) {
			return nil, Validation(FieldError{Field: "endDate", Message: "must not be before startDate"})
		}
	default:
		today := calendar.DateOnly(now)
		f.From = &today
	}

	all, err := s.stores.Slots.List(ctx, f)
	if err != nil {
		return nil, internal("list slots", err)
	}

	slots = all[:0]
	for _, slot := range all {
		if !slot.InPast(now) {
			slots = append(slots, slot)
		}
	}
	return slots, nil
}

// ListDoctorSlots возвращает все слоты врача, опционально по статусу.
func (s *SlotService) ListDoctorSlots(ctx context.Context, doctorID uuid.UUID, status string) (slots []model.Slot, err error) {
	ctx, done := s.opts.begin(ctx, "list_doctor_slots", attribute.String("doctor_id", doctorID.String()))
	defer done(&err)

	f := repository.SlotFilter{DoctorID: &doctorID}
	if status != "" {
		st, err := model.ParseSlotStatus(status)
		if err != nil {
			return nil, Validation(FieldError{Field: "status", Message: "must be one of available, booked, blocked"})
		}
		f.Status = &st
	}

	slots, err = s.stores.Slots.List(ctx, f)
	if err != nil {
		return nil, internal("list slots", err)
	}
	return slots, nil
}

// Block переводит слот в blocked. Обратного перехода нет.
// Слот с активным бронированием заблокировать нельзя.
func (s *SlotService) Block(ctx context.Context, actor calendar.Principal, slotID uuid.UUID) (slot *model.Slot, err error) {
	ctx, done := s.opts.begin(ctx, "block_slot", attribute.String("slot_id", slotID.String()))
	defer done(&err)

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		slot, err = s.stores.Slots.GetByID(ctx, slotID)
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(MsgSlotNotFound)
		}
		if err != nil {
			return internal("load slot", err)
		}

		switch slot.Status {
		case model.SlotStatusBlocked:
			return nil
		case model.SlotStatusAvailable, model.SlotStatusBooked:
		default:
			return internal("block slot", fmt.Errorf("unexpected slot status %q", slot.Status))
		}

		active, err := s.stores.Bookings.FindActiveBySlot(ctx, slotID, uuid.Nil)
		if err != nil {
			return internal("check active booking", err)
		}
		if active != nil {
			return conflict(MsgSlotHasBooking)
		}

		// статус мог смениться после проверок выше
		ok, err := s.stores.Slots.TransitionStatus(ctx, slotID, slot.Status, model.SlotStatusBlocked)
		if err != nil {
			return internal("block slot", err)
		}
		if !ok {
			return conflict(MsgConcurrentUpdate)
		}
		slot.Status = model.SlotStatusBlocked

		return audit(ctx, s.stores.Events, model.EventTypeSlotBlocked, actor.UserID, nil, &slot.ID,
			calendar.FormatSlot(slot.Day(), slot.StartTime, slot.EndTime))
	})
	if err != nil {
		return nil, err
	}
	return slot, nil
}

// Delete удаляет слот, если на него нет ни одного бронирования,
// включая завершённые и отменённые.
func (s *SlotService) Delete(ctx context.Context, actor calendar.Principal, slotID uuid.UUID) (err error) {
	ctx, done := s.opts.begin(ctx, "delete_slot", attribute.String("slot_id", slotID.String()))
	defer done(&err)

	return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		slot, err := s.stores.Slots.GetByID(ctx, slotID)
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(MsgSlotNotFound)
		}
		if err != nil {
			return internal("load slot", err)
		}

		active, err := s.stores.Bookings.FindActiveBySlot(ctx, slotID, uuid.Nil)
		if err != nil {
			return internal("check active booking", err)
		}
		if active != nil {
			return conflict(MsgSlotHasBooking)
		}

		referenced, err := s.stores.Bookings.HasAnyBySlot(ctx, slotID)
		if err != nil {
			return internal("check bookings", err)
		}
		if referenced {
			return conflict(MsgSlotReferenced)
		}

		err = s.stores.Slots.Delete(ctx, slotID)
		switch {
		case errors.Is(err, repository.ErrInUse):
			return conflict(MsgSlotReferenced)
		case errors.Is(err, repository.ErrNotFound):
			return notFound(MsgSlotNotFound)
		case err != nil:
			return internal("delete slot", err)
		}

		return audit(ctx, s.stores.Events, model.EventTypeSlotDeleted, actor.UserID, nil, &slot.ID,
			calendar.FormatSlot(slot.Day(), slot.StartTime, slot.EndTime))
	})
}
