package config

import (
	"testing"
	"time"
)

func TestLoadDBConfig_Defaults(t *testing.T) {
	cfg, err := LoadDBConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Driver != DriverPostgres {
		t.Errorf("expected default driver postgres, got %s", cfg.Driver)
	}
	if cfg.Port != 5432 {
		t.Errorf("expected default port 5432, got %d", cfg.Port)
	}
	if cfg.MaxOpenConns != 10 {
		t.Errorf("expected default max open conns 10, got %d", cfg.MaxOpenConns)
	}
}

func TestLoadDBConfig_FromEnv(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_SQLITE_PATH", "/tmp/test.db")
	t.Setenv("DB_MAX_OPEN_CONNS", "1")

	cfg, err := LoadDBConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Driver != DriverSQLite || cfg.MaxOpenConns != 1 {
		t.Fatalf("env not applied: %+v", cfg)
	}
	if got := cfg.DSN(); got != "file:/tmp/test.db?_foreign_keys=on&_busy_timeout=5000" {
		t.Errorf("unexpected sqlite dsn %s", got)
	}
}

func TestLoadDBConfig_UnknownDriver(t *testing.T) {
	t.Setenv("DB_DRIVER", "mysql")
	if _, err := LoadDBConfig(); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestLoadAppConfig_RequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	if _, err := LoadAppConfig(); err == nil {
		t.Fatal("expected error when JWT_SECRET is missing")
	}
}

func TestLoadAppConfig_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := LoadAppConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.GRPCAddr != ":50051" {
		t.Errorf("expected default grpc addr, got %s", cfg.GRPCAddr)
	}
	if cfg.DoctorCacheTTL != 5*time.Minute {
		t.Errorf("expected 5m cache ttl, got %v", cfg.DoctorCacheTTL)
	}
	if cfg.SlotDefaultMinutes != 30 {
		t.Errorf("expected 30 minute slots, got %d", cfg.SlotDefaultMinutes)
	}
	if cfg.SlotLocation() != time.UTC {
		t.Errorf("expected UTC slot location")
	}
}

func TestLoadAppConfig_BadTimeZone(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("SLOT_TIMEZONE", "Mars/Olympus")
	if _, err := LoadAppConfig(); err == nil {
		t.Fatal("expected error for unknown time zone")
	}
}
