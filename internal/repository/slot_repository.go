package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Leganyst/clinic-booking/internal/db"
	"github.com/Leganyst/clinic-booking/internal/model"
)

// Условия выборки слотов. Пустые поля не ограничивают выборку.
type SlotFilter struct {
	DoctorID *uuid.UUID
	Status   *model.SlotStatus
	// Границы по дате включительно, полночь UTC.
	From *time.Time
	To   *time.Time
}

type SlotRepository interface {
	// Найти слот по ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Slot, error)
	// Вставить слоты, пропуская уже существующие по (doctor_id, date, start_time).
	// Возвращает число реально вставленных.
	InsertIfAbsent(ctx context.Context, slots []model.Slot) (int64, error)
	// Слоты по фильтру, упорядоченные по дате и времени начала.
	List(ctx context.Context, f SlotFilter) ([]model.Slot, error)
	// Перевести статус from -> to. false, если слот уже не в статусе from.
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to model.SlotStatus) (bool, error)
	// Удалить слот.
	Delete(ctx context.Context, id uuid.UUID) error
}

type GormSlotRepository struct {
	db *gorm.DB
}

func NewGormSlotRepository(db *gorm.DB) *GormSlotRepository {
	return &GormSlotRepository{db: db}
}

const insertBatchSize = 200

func (r *GormSlotRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Slot, error) {
	var slot model.Slot
	if err := db.Conn(ctx, r.db).First(&slot, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &slot, nil
}

func (r *GormSlotRepository) InsertIfAbsent(ctx context.Context, slots []model.Slot) (int64, error) {
	if len(slots) == 0 {
		return 0, nil
	}
	res := db.Conn(ctx, r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "doctor_id"}, {Name: "date"}, {Name: "start_time"}},
			DoNothing: true,
		}).
		CreateInBatches(&slots, insertBatchSize)
	if res.Error != nil {
		return 0, translate(res.Error)
	}
	return res.RowsAffected, nil
}

func (r *GormSlotRepository) List(ctx context.Context, f SlotFilter) ([]model.Slot, error) {
	q := db.Conn(ctx, r.db).Model(&model.Slot{})
	if f.DoctorID != nil {
		q = q.Where("doctor_id = ?", *f.DoctorID)
	}
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}
	if f.From != nil {
		q = q.Where("date >= ?", datatypes.Date(*f.From))
	}
	if f.To != nil {
		q = q.Where("date <= ?", datatypes.Date(*f.To))
	}

	slots := []model.Slot{}
	if err := q.Order("date ASC").Order("start_time ASC").Find(&slots).Error; err != nil {
		return nil, err
	}
	return slots, nil
}

func (r *GormSlotRepository) TransitionStatus(ctx context.Context, id uuid.UUID, from, to model.SlotStatus) (bool, error) {
	res := db.Conn(ctx, r.db).
		Model(&model.Slot{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return false, translate(res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *GormSlotRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := db.Conn(ctx, r.db).Delete(&model.Slot{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
