package model

import (
	"fmt"

	"gorm.io/gorm"
)

// Частичный уникальный индекс: на слот не более одного бронирования
// в статусах pending/confirmed. Это окончательный арбитр гонок при бронировании.
const activeBookingIndexSQL = `CREATE UNIQUE INDEX IF NOT EXISTS idx_bookings_active_slot
	ON bookings (slot_id) WHERE status IN ('pending', 'confirmed')`

// AutoMigrate выполняет миграцию всех сущностей ядра записи.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&User{},
		&Doctor{},
		&Slot{},
		&Booking{},
		&Event{},
	); err != nil {
		return err
	}
	if err := db.Exec(activeBookingIndexSQL).Error; err != nil {
		return fmt.Errorf("create active booking index: %w", err)
	}
	return nil
}
