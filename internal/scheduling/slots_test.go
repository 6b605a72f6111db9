package scheduling

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/Leganyst/clinic-booking/internal/model"
	"github.com/Leganyst/clinic-booking/internal/repository"
)

func TestSlotService_GenerateIdempotent(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	admin := principal(e.admin)

	// 10.06.2030 и 17.06.2030 понедельники
	created, err := e.slots.Generate(ctx, admin, GenerateParams{
		DoctorID:  e.doctor.ID,
		StartDate: "2030-06-10",
		EndDate:   "2030-06-16",
	})
	require.NoError(t, err)
	assert.EqualValues(t, 2, created)

	created, err = e.slots.Generate(ctx, admin, GenerateParams{
		DoctorID:  e.doctor.ID,
		StartDate: "2030-06-10",
		EndDate:   "2030-06-17",
	})
	require.NoError(t, err)
	assert.EqualValues(t, 2, created, "only the second Monday is new")

	created, err = e.slots.Generate(ctx, admin, GenerateParams{
		DoctorID:  e.doctor.ID,
		StartDate: "2030-06-10",
		EndDate:   "2030-06-17",
	})
	require.NoError(t, err)
	assert.Zero(t, created)

	slots, err := e.slots.ListDoctorSlots(ctx, e.doctor.ID, "")
	require.NoError(t, err)
	require.Len(t, slots, 4)
	assert.Equal(t, "09:00", slots[0].StartTime)
	assert.Equal(t, "09:30", slots[0].EndTime)
	assert.Equal(t, "UTC", slots[0].TimeZone)
	assert.Equal(t, model.SlotStatusAvailable, slots[0].Status)
}

func TestSlotService_GenerateDropsRemainder(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	d := &model.Doctor{
		Name: "Dr. Short",
		Availability: datatypes.JSONSlice[model.AvailabilityWindow]{
			{DayOfWeek: int(time.Wednesday), StartTime: "09:00", EndTime: "09:45"},
			// битое окно пропускается
			{DayOfWeek: int(time.Wednesday), StartTime: "12:00", EndTime: "11:00"},
			{DayOfWeek: 9, StartTime: "09:00", EndTime: "10:00"},
		},
	}
	require.NoError(t, e.stores.Doctors.Create(ctx, d))

	created, err := e.slots.Generate(ctx, principal(e.admin), GenerateParams{
		DoctorID:            d.ID,
		StartDate:           "2030-06-12",
		EndDate:             "2030-06-12",
		SlotDurationMinutes: 30,
		TimeZone:            "Europe/Moscow",
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, created)

	slots, err := e.slots.ListDoctorSlots(ctx, d.ID, "available")
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, "09:00", slots[0].StartTime)
	assert.Equal(t, "09:30", slots[0].EndTime)
	assert.Equal(t, "Europe/Moscow", slots[0].TimeZone)
}

func TestSlotService_GenerateValidation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	admin := principal(e.admin)

	_, err := e.slots.Generate(ctx, admin, GenerateParams{DoctorID: e.doctor.ID, StartDate: "10.06.2030", EndDate: "2030-06-11"})
	requireKind(t, err, KindValidation, "")
	var verr *Error
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Fields, 1)
	assert.Equal(t, "startDate", verr.Fields[0].Field)

	_, err = e.slots.Generate(ctx, admin, GenerateParams{DoctorID: e.doctor.ID, StartDate: "2030-06-11", EndDate: "2030-06-10"})
	requireKind(t, err, KindValidation, "")

	_, err = e.slots.Generate(ctx, admin, GenerateParams{DoctorID: e.doctor.ID, StartDate: "2030-01-01", EndDate: "2032-01-01"})
	requireKind(t, err, KindValidation, "")

	_, err = e.slots.Generate(ctx, admin, GenerateParams{DoctorID: e.doctor.ID, StartDate: "2030-06-10", EndDate: "2030-06-11", SlotDurationMinutes: -5})
	requireKind(t, err, KindValidation, "")
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "slotDurationMinutes", verr.Fields[0].Field)

	_, err = e.slots.Generate(ctx, admin, GenerateParams{DoctorID: uuid.New(), StartDate: "2030-06-10", EndDate: "2030-06-11"})
	requireKind(t, err, KindNotFound, MsgDoctorNotFound)

	var count int64
	require.NoError(t, e.db.Model(&model.Slot{}).Count(&count).Error)
	assert.Zero(t, count, "nothing is written on validation failure")
}

func TestSlotService_ListAvailable(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	e.slot(t, yesterday, "09:00", "09:30")
	e.slot(t, today, "11:00", "11:30") // уже закончился
	later := e.slot(t, today, "15:00", "15:30")
	next := e.slot(t, tomorrow, "09:00", "09:30")
	booked := e.slot(t, tomorrow, "09:30", "10:00")
	e.seedBooking(t, booked, model.BookingStatusConfirmed)

	slots, err := e.slots.ListAvailable(ctx, AvailableQuery{})
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, later.ID, slots[0].ID)
	assert.Equal(t, next.ID, slots[1].ID)

	slots, err = e.slots.ListAvailable(ctx, AvailableQuery{Date: "2030-06-11", DoctorID: &e.doctor.ID})
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, next.ID, slots[0].ID)

	slots, err = e.slots.ListAvailable(ctx, AvailableQuery{StartDate: "2030-06-09", EndDate: "2030-06-10"})
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, later.ID, slots[0].ID)

	_, err = e.slots.ListAvailable(ctx, AvailableQuery{StartDate: "2030-06-11", EndDate: "2030-06-10"})
	requireKind(t, err, KindValidation, "")

	_, err = e.slots.ListAvailable(ctx, AvailableQuery{Date: "tomorrow"})
	requireKind(t, err, KindValidation, "")
}

func TestSlotService_ListDoctorSlotsBadStatus(t *testing.T) {
	e := newEnv(t)
	_, err := e.slots.ListDoctorSlots(context.Background(), e.doctor.ID, "free")
	requireKind(t, err, KindValidation, "")
}

func TestSlotService_Block(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	admin := principal(e.admin)

	s := e.slot(t, tomorrow, "09:00", "09:30")
	blocked, err := e.slots.Block(ctx, admin, s.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SlotStatusBlocked, blocked.Status)

	// повторная блокировка ничего не меняет
	again, err := e.slots.Block(ctx, admin, s.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SlotStatusBlocked, again.Status)

	busy := e.slot(t, tomorrow, "09:30", "10:00")
	_, err = e.engine.Create(ctx, principal(e.user), busy.ID)
	require.NoError(t, err)
	_, err = e.slots.Block(ctx, admin, busy.ID)
	requireKind(t, err, KindConflict, MsgSlotHasBooking)
	assert.Equal(t, model.SlotStatusBooked, e.slotStatus(t, busy.ID))

	_, err = e.slots.Block(ctx, admin, uuid.New())
	requireKind(t, err, KindNotFound, MsgSlotNotFound)
}

// bookedAfterCheck после проверки активных броней занимает слот в той же
// транзакции, как если бы между проверкой и UPDATE закоммитился Create.
type bookedAfterCheck struct {
	repository.BookingRepository
	once sync.Once
	race func(ctx context.Context, slotID uuid.UUID)
}

func (r *bookedAfterCheck) FindActiveBySlot(ctx context.Context, slotID, excludeID uuid.UUID) (*model.Booking, error) {
	b, err := r.BookingRepository.FindActiveBySlot(ctx, slotID, excludeID)
	r.once.Do(func() { r.race(ctx, slotID) })
	return b, err
}

func TestSlotService_BlockLosesToBookingAfterCheck(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	s := e.slot(t, tomorrow, "09:00", "09:30")

	inner := e.stores.Bookings
	slotsRepo := e.stores.Slots
	e.stores.Bookings = &bookedAfterCheck{
		BookingRepository: inner,
		race: func(ctx context.Context, slotID uuid.UUID) {
			ok, err := slotsRepo.TransitionStatus(ctx, slotID, model.SlotStatusAvailable, model.SlotStatusBooked)
			require.NoError(t, err)
			require.True(t, ok)
			require.NoError(t, inner.Create(ctx, &model.Booking{
				UserID: e.user.ID, SlotID: slotID, DoctorID: e.doctor.ID, Status: model.BookingStatusConfirmed,
			}))
		},
	}
	e.rebuild()

	_, err := e.slots.Block(ctx, principal(e.admin), s.ID)
	requireKind(t, err, KindConflict, MsgConcurrentUpdate)
	// блокировка не перетёрла booked
	assert.NotEqual(t, model.SlotStatusBlocked, e.slotStatus(t, s.ID))
}

func TestSlotService_Delete(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	admin := principal(e.admin)

	free := e.slot(t, tomorrow, "09:00", "09:30")
	require.NoError(t, e.slots.Delete(ctx, admin, free.ID))
	_, err := e.stores.Slots.GetByID(ctx, free.ID)
	require.Error(t, err)

	// даже отменённая бронь держит слот: удаление осиротило бы историю
	used := e.slot(t, tomorrow, "09:30", "10:00")
	e.seedBooking(t, used, model.BookingStatusCancelled)
	err = e.slots.Delete(ctx, admin, used.ID)
	requireKind(t, err, KindConflict, MsgSlotReferenced)

	busy := e.slot(t, tomorrow, "10:00", "10:30")
	_, err = e.engine.Create(ctx, principal(e.user), busy.ID)
	require.NoError(t, err)
	err = e.slots.Delete(ctx, admin, busy.ID)
	requireKind(t, err, KindConflict, MsgSlotHasBooking)

	err = e.slots.Delete(ctx, admin, uuid.New())
	requireKind(t, err, KindNotFound, MsgSlotNotFound)
}

func TestMetrics_ObserveOperations(t *testing.T) {
	e := newEnv(t)
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	engine := NewEngine(e.tx, e.stores, WithClock(func() time.Time { return testNow }), WithMetrics(m))
	ctx := context.Background()

	s := e.slot(t, tomorrow, "09:00", "09:30")
	_, err := engine.Create(ctx, principal(e.user), s.ID)
	require.NoError(t, err)
	_, err = engine.Create(ctx, principal(e.admin), s.ID)
	require.Error(t, err)

	assert.InDelta(t, 1, testutil.ToFloat64(m.operations.WithLabelValues("create_booking", "ok")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.operations.WithLabelValues("create_booking", string(KindConflict))), 0)

	e.seedBooking(t, e.slot(t, yesterday, "09:00", "09:30"), model.BookingStatusConfirmed)
	n, err := engine.ExpirePast(ctx, principal(e.admin))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	assert.InDelta(t, 1, testutil.ToFloat64(m.bookingsExpired), 0)
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	m.ObserveOperation("op", time.Now(), nil)
	m.AddSlotsGenerated(3)
	m.AddBookingsExpired(1)
}
