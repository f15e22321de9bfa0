package config

import (
	"errors"
	"testing"

	"database-migrator/internal/domain"
)

func validConfig() Config {
	return Config{
		DatabaseDriver:   "sqlite",
		DatabaseURL:      "file:test.db",
		MigrationsDir:    "./migrations",
		VersionTable:     DefaultVersionTable,
		VersionColumn:    DefaultVersionColumn,
		Port:             "8080",
		LogLevel:         "INFO",
		OtelSamplingRate: 1.0,
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "")
	t.Setenv("MIGRATIONS_DIR", "")
	t.Setenv("VERSION_TABLE", "")
	t.Setenv("VERSION_COLUMN", "")
	t.Setenv("OTEL_ENABLED", "")
	t.Setenv("OTEL_SAMPLING_RATE", "")

	cfg := Load()

	if cfg.DatabaseDriver != "mysql" {
		t.Errorf("expected driver mysql, got %s", cfg.DatabaseDriver)
	}
	if cfg.MigrationsDir != DefaultMigrationsDir {
		t.Errorf("expected migrations dir %s, got %s", DefaultMigrationsDir, cfg.MigrationsDir)
	}
	if cfg.VersionTable != "versionTable" || cfg.VersionColumn != "version" {
		t.Errorf("unexpected version table defaults: %s.%s", cfg.VersionTable, cfg.VersionColumn)
	}
	if cfg.OtelEnabled {
		t.Error("expected otel disabled by default")
	}
	if cfg.OtelSamplingRate != 1.0 {
		t.Errorf("expected sampling rate 1.0, got %v", cfg.OtelSamplingRate)
	}
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "postgres")
	t.Setenv("VERSION_TABLE", "schema_version")
	t.Setenv("VERSION_COLUMN", "v")
	t.Setenv("OTEL_ENABLED", "true")
	t.Setenv("OTEL_SAMPLING_RATE", "0.25")

	cfg := Load()

	if cfg.DatabaseDriver != "postgres" {
		t.Errorf("expected driver postgres, got %s", cfg.DatabaseDriver)
	}
	if cfg.VersionTable != "schema_version" || cfg.VersionColumn != "v" {
		t.Errorf("unexpected version table: %s.%s", cfg.VersionTable, cfg.VersionColumn)
	}
	if !cfg.OtelEnabled {
		t.Error("expected otel enabled")
	}
	if cfg.OtelSamplingRate != 0.25 {
		t.Errorf("expected sampling rate 0.25, got %v", cfg.OtelSamplingRate)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(c *Config)
		wantErr bool
	}{
		{name: "valid", modify: func(c *Config) {}},
		{name: "unknown driver", modify: func(c *Config) { c.DatabaseDriver = "oracle" }, wantErr: true},
		{name: "missing dsn", modify: func(c *Config) { c.DatabaseURL = "" }, wantErr: true},
		{name: "encrypted dsn with key", modify: func(c *Config) {
			c.DatabaseURL = ""
			c.DatabaseURLCiphertext = "ZHNu"
			c.KMSKeyName = "projects/p/locations/l/keyRings/r/cryptoKeys/k"
		}},
		{name: "encrypted dsn without key", modify: func(c *Config) {
			c.DatabaseURL = ""
			c.DatabaseURLCiphertext = "ZHNu"
		}, wantErr: true},
		{name: "table with quote", modify: func(c *Config) { c.VersionTable = "version`; DROP" }, wantErr: true},
		{name: "column starting with digit", modify: func(c *Config) { c.VersionColumn = "1version" }, wantErr: true},
		{name: "otel without endpoint", modify: func(c *Config) { c.OtelEnabled = true; c.OtelServiceName = "svc" }, wantErr: true},
		{name: "sampling rate out of range", modify: func(c *Config) { c.OtelSamplingRate = 1.5 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.modify(&cfg)

			err := cfg.Validate()
			if tt.wantErr {
				if !errors.Is(err, domain.ErrInvalidConfig) {
					t.Errorf("expected ErrInvalidConfig, got %v", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
