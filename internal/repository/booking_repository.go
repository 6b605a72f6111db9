package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/Leganyst/clinic-booking/internal/db"
	"github.com/Leganyst/clinic-booking/internal/model"
)

// Условия выборки бронирований.
type BookingFilter struct {
	UserID *uuid.UUID
	Status *model.BookingStatus
}

type BookingRepository interface {
	// Создать новое бронирование. Занятый слот даёт ErrDuplicate.
	Create(ctx context.Context, booking *model.Booking) error
	// Получить бронирование по ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Booking, error)
	// Получить бронирование вместе с пользователем, слотом и врачом.
	GetDetailed(ctx context.Context, id uuid.UUID) (*model.Booking, error)
	// Активное бронирование слота, кроме excludeID. nil, если такого нет.
	FindActiveBySlot(ctx context.Context, slotID, excludeID uuid.UUID) (*model.Booking, error)
	// Есть ли хоть одно бронирование (в любом статусе) на слот.
	HasAnyBySlot(ctx context.Context, slotID uuid.UUID) (bool, error)
	// Отменить бронирование, если оно всё ещё в статусе from и на слоте slotID.
	Cancel(ctx context.Context, id, slotID uuid.UUID, from model.BookingStatus, reason *string, at time.Time) (bool, error)
	// Перевести статус from -> to.
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to model.BookingStatus) (bool, error)
	// Перенести активное бронирование со слота fromSlot на toSlot.
	MoveToSlot(ctx context.Context, id, fromSlot, toSlot uuid.UUID) (bool, error)
	// Активные бронирования, чьи слоты не позже day, вместе со слотами.
	ListActiveUntil(ctx context.Context, day time.Time) ([]model.Booking, error)
	// Перевести в expired активные бронирования из ids.
	ExpireByIDs(ctx context.Context, ids []uuid.UUID) (int64, error)
	// Список бронирований с пагинацией, новые первыми.
	List(ctx context.Context, f BookingFilter, limit, offset int) ([]model.Booking, int64, error)
}

// Реализация на GORM.
type GormBookingRepository struct {
	db *gorm.DB
}

func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

func (r *GormBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	return translate(db.Conn(ctx, r.db).Create(booking).Error)
}

func (r *GormBookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	var b model.Booking
	if err := db.Conn(ctx, r.db).First(&b, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &b, nil
}

func (r *GormBookingRepository) GetDetailed(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	var b model.Booking
	err := db.Conn(ctx, r.db).
		Preload("User").
		Preload("Slot").
		Preload("Doctor").
		First(&b, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &b, nil
}

func (r *GormBookingRepository) FindActiveBySlot(ctx context.Context, slotID, excludeID uuid.UUID) (*model.Booking, error) {
	q := db.Conn(ctx, r.db).
		Where("slot_id = ?", slotID).
		Where("status IN ?", model.ActiveBookingStatuses)
	if excludeID != uuid.Nil {
		q = q.Where("id <> ?", excludeID)
	}

	var bookings []model.Booking
	if err := q.Limit(1).Find(&bookings).Error; err != nil {
		return nil, err
	}
	if len(bookings) == 0 {
		return nil, nil
	}
	return &bookings[0], nil
}

func (r *GormBookingRepository) HasAnyBySlot(ctx context.Context, slotID uuid.UUID) (bool, error) {
	var count int64
	err := db.Conn(ctx, r.db).
		Model(&model.Booking{}).
		Where("slot_id = ?", slotID).
		Count(&count).Error
	return count > 0, err
}

func (r *GormBookingRepository) Cancel(
	ctx context.Context,
	id, slotID uuid.UUID,
	from model.BookingStatus,
	reason *string,
	at time.Time,
) (bool, error) {
	update := map[string]any{
		"status":       model.BookingStatusCancelled,
		"cancelled_at": at,
	}
	if reason != nil {
		update["cancellation_reason"] = *reason
	}
	res := db.Conn(ctx, r.db).
		Model(&model.Booking{}).
		Where("id = ? AND slot_id = ? AND status = ?", id, slotID, from).
		Updates(update)
	if res.Error != nil {
		return false, translate(res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *GormBookingRepository) TransitionStatus(ctx context.Context, id uuid.UUID, from, to model.BookingStatus) (bool, error) {
	res := db.Conn(ctx, r.db).
		Model(&model.Booking{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return false, translate(res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *GormBookingRepository) MoveToSlot(ctx context.Context, id, fromSlot, toSlot uuid.UUID) (bool, error) {
	res := db.Conn(ctx, r.db).
		Model(&model.Booking{}).
		Where("id = ? AND slot_id = ?", id, fromSlot).
		Where("status IN ?", model.ActiveBookingStatuses).
		Update("slot_id", toSlot)
	if res.Error != nil {
		return false, translate(res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *GormBookingRepository) ListActiveUntil(ctx context.Context, day time.Time) ([]model.Booking, error) {
	var bookings []model.Booking
	err := db.Conn(ctx, r.db).
		Preload("Slot").
		Joins("JOIN slots ON slots.id = bookings.slot_id").
		Where("bookings.status IN ?", model.ActiveBookingStatuses).
		Where("slots.date <= ?", datatypes.Date(day)).
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *GormBookingRepository) ExpireByIDs(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := db.Conn(ctx, r.db).
		Model(&model.Booking{}).
		Where("id IN ?", ids).
		Where("status IN ?", model.ActiveBookingStatuses).
		Update("status", model.BookingStatusExpired)
	if res.Error != nil {
		return 0, translate(res.Error)
	}
	return res.RowsAffected, nil
}

func (r *GormBookingRepository) List(
	ctx context.Context,
	f BookingFilter,
	limit, offset int,
) ([]model.Booking, int64, error) {
	var (
		bookings []model.Booking
		total    int64
	)

	q := db.Conn(ctx, r.db).Model(&model.Booking{})
	if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}

	err := q.Preload("User").
		Preload("Slot").
		Preload("Doctor").
		Order("created_at DESC").
		Find(&bookings).Error
	if err != nil {
		return nil, 0, err
	}

	return bookings, total, nil
}
