package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/Leganyst/clinic-booking/internal/calendar"
	"github.com/Leganyst/clinic-booking/internal/config"
	"github.com/Leganyst/clinic-booking/internal/db"
	"github.com/Leganyst/clinic-booking/internal/logging"
	"github.com/Leganyst/clinic-booking/internal/model"
	"github.com/Leganyst/clinic-booking/internal/repository"
	"github.com/Leganyst/clinic-booking/internal/scheduling"
)

// От имени systemPrincipal CLI выполняет административные операции.
var systemPrincipal = calendar.Principal{UserID: uuid.Nil, Role: calendar.RoleAdmin}

// собранные зависимости процесса
type app struct {
	cfg      *config.AppConfig
	logger   zerolog.Logger
	db       *gorm.DB
	redis    *redis.Client
	registry *prometheus.Registry

	users   repository.UserRepository
	doctors repository.DoctorRepository
	slots   *scheduling.SlotService
	engine  *scheduling.Engine
}

func newApp(cmd *cobra.Command) (*app, error) {
	// 1. Конфиг.
	cfg, err := config.LoadAppConfig()
	if err != nil {
		return nil, fmt.Errorf("load app config: %w", err)
	}
	dbCfg, err := config.LoadDBConfig()
	if err != nil {
		return nil, fmt.Errorf("load db config: %w", err)
	}

	console, _ := cmd.Flags().GetBool("console")
	logger := logging.New(cfg.LogLevel, console)

	// 2. БД.
	gormDB, err := db.NewGormDB(dbCfg)
	if err != nil {
		return nil, fmt.Errorf("init db: %w", err)
	}

	a := &app{
		cfg:      cfg,
		logger:   logger,
		db:       gormDB,
		registry: prometheus.NewRegistry(),
	}
	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// 3. Репозитории. Справочник врачей кешируем в redis, если он настроен.
	var doctors repository.DoctorRepository = repository.NewGormDoctorRepository(gormDB)
	if cfg.RedisAddr != "" {
		a.redis = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Second)
		if err := a.redis.Ping(ctx).Err(); err != nil {
			// кеш не обязателен: репозиторий сам уходит в БД при ошибках redis
			logger.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unavailable, doctor cache degraded")
		}
		cancel()
		doctors = repository.NewCachedDoctorRepository(doctors, a.redis, cfg.DoctorCacheTTL, logger)
	}
	a.doctors = doctors
	a.users = repository.NewGormUserRepository(gormDB)

	stores := scheduling.Stores{
		Slots:    repository.NewGormSlotRepository(gormDB),
		Bookings: repository.NewGormBookingRepository(gormDB),
		Doctors:  doctors,
		Users:    a.users,
		Events:   repository.NewGormEventRepository(gormDB),
	}

	// 4. Ядро.
	opts := []scheduling.Option{
		scheduling.WithLogger(logger),
		scheduling.WithMetrics(scheduling.NewMetrics(a.registry)),
		scheduling.WithSlotDefaults(cfg.SlotDefaultMinutes, cfg.SlotTimeZone),
		scheduling.WithMaxRangeDays(cfg.SlotMaxRangeDays),
	}
	tx := db.NewTransactor(gormDB)
	a.slots = scheduling.NewSlotService(tx, stores, opts...)
	a.engine = scheduling.NewEngine(tx, stores, opts...)

	return a, nil
}

func (a *app) migrate() error {
	if err := model.AutoMigrate(a.db); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

func (a *app) Close() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
