package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/Leganyst/clinic-booking/internal/db/dbtest"
	"github.com/Leganyst/clinic-booking/internal/model"
)

type fixture struct {
	db     *gorm.DB
	user   *model.User
	doctor *model.Doctor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gdb := dbtest.New(t)

	user := &model.User{Name: "Ann", Email: "ann@example.com"}
	doctor := &model.Doctor{Name: "Dr. Watson", Specialization: "therapist"}
	require.NoError(t, gdb.Create(user).Error)
	require.NoError(t, gdb.Create(doctor).Error)

	return &fixture{db: gdb, user: user, doctor: doctor}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (f *fixture) slot(t *testing.T, date time.Time, start, end string, status model.SlotStatus) *model.Slot {
	t.Helper()
	s := &model.Slot{
		DoctorID:  f.doctor.ID,
		Date:      datatypes.Date(date),
		StartTime: start,
		EndTime:   end,
		Status:    status,
		TimeZone:  "UTC",
	}
	require.NoError(t, f.db.Create(s).Error)
	return s
}

func (f *fixture) booking(t *testing.T, slot *model.Slot, status model.BookingStatus) *model.Booking {
	t.Helper()
	b := &model.Booking{UserID: f.user.ID, SlotID: slot.ID, DoctorID: slot.DoctorID, Status: status}
	require.NoError(t, NewGormBookingRepository(f.db).Create(context.Background(), b))
	return b
}
