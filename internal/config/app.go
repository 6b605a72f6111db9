package config

import (
	"fmt"
	"time"
)

// AppConfig: настройки процесса: адреса, секреты, параметры генерации слотов.
type AppConfig struct {
	GRPCAddr           string
	OpsAddr            string
	JWTSecret          string
	LogLevel           string
	RedisAddr          string
	RedisPassword      string
	DoctorCacheTTL     time.Duration
	SlotDefaultMinutes int
	SlotTimeZone       string
	SlotMaxRangeDays   int
}

func LoadAppConfig() (*AppConfig, error) {
	v := newViper()
	v.SetDefault("GRPC_ADDR", ":50051")
	v.SetDefault("OPS_ADDR", ":9090")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("DOCTOR_CACHE_TTL", "5m")
	v.SetDefault("SLOT_DEFAULT_MINUTES", 30)
	v.SetDefault("SLOT_TIMEZONE", "UTC")
	v.SetDefault("SLOT_MAX_RANGE_DAYS", 366)

	cfg := &AppConfig{
		GRPCAddr:           v.GetString("GRPC_ADDR"),
		OpsAddr:            v.GetString("OPS_ADDR"),
		JWTSecret:          v.GetString("JWT_SECRET"),
		LogLevel:           v.GetString("LOG_LEVEL"),
		RedisAddr:          v.GetString("REDIS_ADDR"),
		RedisPassword:      v.GetString("REDIS_PASSWORD"),
		DoctorCacheTTL:     v.GetDuration("DOCTOR_CACHE_TTL"),
		SlotDefaultMinutes: v.GetInt("SLOT_DEFAULT_MINUTES"),
		SlotTimeZone:       v.GetString("SLOT_TIMEZONE"),
		SlotMaxRangeDays:   v.GetInt("SLOT_MAX_RANGE_DAYS"),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.SlotDefaultMinutes <= 0 {
		return nil, fmt.Errorf("SLOT_DEFAULT_MINUTES must be positive, got %d", cfg.SlotDefaultMinutes)
	}
	if cfg.SlotMaxRangeDays <= 0 {
		return nil, fmt.Errorf("SLOT_MAX_RANGE_DAYS must be positive, got %d", cfg.SlotMaxRangeDays)
	}
	if _, err := time.LoadLocation(cfg.SlotTimeZone); err != nil {
		return nil, fmt.Errorf("SLOT_TIMEZONE: %w", err)
	}
	return cfg, nil
}

// SlotLocation зона, в которой проставляется TimeZone сгенерированных слотов.
func (c *AppConfig) SlotLocation() *time.Location {
	loc, err := time.LoadLocation(c.SlotTimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}
