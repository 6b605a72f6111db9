package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Leganyst/clinic-booking/internal/model"
)

// CachedDoctorRepository — read-through кэш справочника врачей в Redis.
// Ошибки Redis не ломают чтение: идём напрямую в БД.
type CachedDoctorRepository struct {
	next   DoctorRepository
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

func NewCachedDoctorRepository(next DoctorRepository, client *redis.Client, ttl time.Duration, logger zerolog.Logger) *CachedDoctorRepository {
	return &CachedDoctorRepository{next: next, client: client, ttl: ttl, logger: logger}
}

func doctorKey(id uuid.UUID) string {
	return "doctor:" + id.String()
}

func (r *CachedDoctorRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	key := doctorKey(id)

	raw, err := r.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var d model.Doctor
		if jsonErr := json.Unmarshal(raw, &d); jsonErr == nil {
			return &d, nil
		}
		r.logger.Warn().Str("key", key).Msg("doctor cache: corrupted entry")
	case !errors.Is(err, redis.Nil):
		r.logger.Warn().Err(err).Str("key", key).Msg("doctor cache: get failed")
	}

	d, err := r.next.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(d); err == nil {
		if err := r.client.Set(ctx, key, payload, r.ttl).Err(); err != nil {
			r.logger.Warn().Err(err).Str("key", key).Msg("doctor cache: set failed")
		}
	}
	return d, nil
}

func (r *CachedDoctorRepository) Create(ctx context.Context, doctor *model.Doctor) error {
	if err := r.next.Create(ctx, doctor); err != nil {
		return err
	}
	// на случай, если ID был переиспользован
	if err := r.client.Del(ctx, doctorKey(doctor.ID)).Err(); err != nil {
		r.logger.Warn().Err(err).Msg("doctor cache: invalidate failed")
	}
	return nil
}
