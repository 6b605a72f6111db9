package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Leganyst/clinic-booking/internal/db"
	"github.com/Leganyst/clinic-booking/internal/model"
)

type DoctorRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Doctor, error)
	Create(ctx context.Context, doctor *model.Doctor) error
}

type GormDoctorRepository struct {
	db *gorm.DB
}

func NewGormDoctorRepository(db *gorm.DB) *GormDoctorRepository {
	return &GormDoctorRepository{db: db}
}

func (r *GormDoctorRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	var d model.Doctor
	if err := db.Conn(ctx, r.db).First(&d, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &d, nil
}

func (r *GormDoctorRepository) Create(ctx context.Context, doctor *model.Doctor) error {
	return translate(db.Conn(ctx, r.db).Create(doctor).Error)
}
