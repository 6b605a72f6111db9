package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Leganyst/clinic-booking/internal/model"
)

type countingDoctorRepo struct {
	DoctorRepository
	calls int
}

func (r *countingDoctorRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	r.calls++
	return r.DoctorRepository.GetByID(ctx, id)
}

func TestCachedDoctorRepository_ReadThrough(t *testing.T) {
	f := newFixture(t)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	inner := &countingDoctorRepo{DoctorRepository: NewGormDoctorRepository(f.db)}
	repo := NewCachedDoctorRepository(inner, client, time.Minute, zerolog.Nop())
	ctx := context.Background()

	d1, err := repo.GetByID(ctx, f.doctor.ID)
	require.NoError(t, err)
	d2, err := repo.GetByID(ctx, f.doctor.ID)
	require.NoError(t, err)

	assert.Equal(t, 1, inner.calls, "second read must hit the cache")
	assert.Equal(t, d1.Name, d2.Name)
	assert.True(t, mr.Exists(doctorKey(f.doctor.ID)))

	mr.FastForward(2 * time.Minute)
	_, err = repo.GetByID(ctx, f.doctor.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls, "expired entry must be reloaded")
}

func TestCachedDoctorRepository_NotFoundIsNotCached(t *testing.T) {
	f := newFixture(t)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := NewCachedDoctorRepository(NewGormDoctorRepository(f.db), client, time.Minute, zerolog.Nop())

	id := uuid.New()
	_, err := repo.GetByID(context.Background(), id)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.False(t, mr.Exists(doctorKey(id)))
}

func TestCachedDoctorRepository_RedisDownFallsBack(t *testing.T) {
	f := newFixture(t)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	repo := NewCachedDoctorRepository(NewGormDoctorRepository(f.db), client, time.Minute, zerolog.Nop())

	d, err := repo.GetByID(context.Background(), f.doctor.ID)
	require.NoError(t, err)
	assert.Equal(t, f.doctor.ID, d.ID)
}
