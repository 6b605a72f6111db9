package scheduling

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/Leganyst/clinic-booking/internal/calendar"
	"github.com/Leganyst/clinic-booking/internal/db"
	"github.com/Leganyst/clinic-booking/internal/db/dbtest"
	"github.com/Leganyst/clinic-booking/internal/model"
	"github.com/Leganyst/clinic-booking/internal/repository"
)

// Фиксированное «сейчас»: 10.06.2030 12:00 по локальному времени сервера.
var testNow = time.Date(2030, time.June, 10, 12, 0, 0, 0, time.Local)

var (
	yesterday = time.Date(2030, time.June, 9, 0, 0, 0, 0, time.UTC)
	today     = time.Date(2030, time.June, 10, 0, 0, 0, 0, time.UTC)
	tomorrow  = time.Date(2030, time.June, 11, 0, 0, 0, 0, time.UTC)
)

type env struct {
	db     *gorm.DB
	stores Stores
	tx     *db.Transactor
	engine *Engine
	slots  *SlotService
	doctor *model.Doctor
	user   *model.User
	admin  *model.User
}

func newEnv(t *testing.T) *env {
	t.Helper()
	gdb := dbtest.New(t)

	stores := Stores{
		Slots:    repository.NewGormSlotRepository(gdb),
		Bookings: repository.NewGormBookingRepository(gdb),
		Doctors:  repository.NewGormDoctorRepository(gdb),
		Users:    repository.NewGormUserRepository(gdb),
		Events:   repository.NewGormEventRepository(gdb),
	}

	e := &env{db: gdb, stores: stores, tx: db.NewTransactor(gdb)}
	e.doctor = &model.Doctor{
		Name:           "Dr. Watson",
		Specialization: "therapist",
		Availability: datatypes.JSONSlice[model.AvailabilityWindow]{
			{DayOfWeek: int(time.Monday), StartTime: "09:00", EndTime: "10:00"},
		},
	}
	require.NoError(t, stores.Doctors.Create(context.Background(), e.doctor))
	e.user = e.newUser(t, calendar.RoleUser)
	e.admin = e.newUser(t, calendar.RoleAdmin)
	e.rebuild()
	return e
}

// rebuild пересобирает сервисы после подмены хранилищ.
func (e *env) rebuild() {
	e.engine = NewEngine(e.tx, e.stores, WithClock(func() time.Time { return testNow }))
	e.slots = NewSlotService(e.tx, e.stores, WithClock(func() time.Time { return testNow }))
}

func (e *env) newUser(t *testing.T, role calendar.Role) *model.User {
	t.Helper()
	u := &model.User{Name: "user", Email: fmt.Sprintf("%s@example.com", uuid.NewString()), Role: role}
	require.NoError(t, e.stores.Users.Create(context.Background(), u))
	return u
}

func principal(u *model.User) calendar.Principal {
	return calendar.Principal{UserID: u.ID, Role: u.Role}
}

func (e *env) slot(t *testing.T, date time.Time, start, end string) *model.Slot {
	t.Helper()
	return e.slotFor(t, e.doctor, date, start, end)
}

func (e *env) slotFor(t *testing.T, d *model.Doctor, date time.Time, start, end string) *model.Slot {
	t.Helper()
	s := &model.Slot{
		DoctorID:  d.ID,
		Date:      datatypes.Date(date),
		StartTime: start,
		EndTime:   end,
		Status:    model.SlotStatusAvailable,
		TimeZone:  "UTC",
	}
	require.NoError(t, e.db.Create(s).Error)
	return s
}

// seedBooking пишет бронирование напрямую, в обход движка.
func (e *env) seedBooking(t *testing.T, s *model.Slot, status model.BookingStatus) *model.Booking {
	t.Helper()
	b := &model.Booking{UserID: e.user.ID, SlotID: s.ID, DoctorID: s.DoctorID, Status: status}
	require.NoError(t, e.db.Create(b).Error)
	if status.IsActive() {
		require.NoError(t, e.db.Model(s).Update("status", model.SlotStatusBooked).Error)
	}
	return b
}

func (e *env) slotStatus(t *testing.T, id uuid.UUID) model.SlotStatus {
	t.Helper()
	s, err := e.stores.Slots.GetByID(context.Background(), id)
	require.NoError(t, err)
	return s.Status
}

func (e *env) bookingStatus(t *testing.T, id uuid.UUID) model.BookingStatus {
	t.Helper()
	b, err := e.stores.Bookings.GetByID(context.Background(), id)
	require.NoError(t, err)
	return b.Status
}

func requireKind(t *testing.T, err error, kind Kind, msg string) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, kind, KindOf(err), "unexpected error: %v", err)
	if msg != "" {
		require.ErrorIs(t, err, &Error{Kind: kind, Message: msg})
	}
}
