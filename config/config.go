// Package config はアプリケーション設定の読み込みを提供する。
package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"

	"github.com/go-playground/validator/v10"

	"database-migrator/internal/domain"
)

const (
	DefaultVersionTable  = "versionTable"
	DefaultVersionColumn = "version"
	DefaultMigrationsDir = "./migrations"
)

var identifierRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Config はアプリケーション設定を表す。
// 起動時に一度だけ構築し、値として各コンポーネントへ渡す。
type Config struct {
	DatabaseDriver        string `validate:"required,oneof=mysql postgres sqlite"`
	DatabaseURL           string `validate:"required_without=DatabaseURLCiphertext"`
	DatabaseURLCiphertext string `validate:"omitempty,base64"`
	KMSKeyName            string `validate:"required_with=DatabaseURLCiphertext"`
	MigrationsDir         string `validate:"required"`
	VersionTable          string `validate:"required,identifier"`
	VersionColumn         string `validate:"required,identifier"`
	Port                  string `validate:"required,numeric"`
	LogLevel              string `validate:"omitempty,oneof=DEBUG INFO WARN ERROR"`
	GoogleCloudProject    string
	OtelEnabled           bool
	OtelEndpoint          string  `validate:"required_if=OtelEnabled true"`
	OtelServiceName       string  `validate:"required_if=OtelEnabled true"`
	OtelSamplingRate      float64 `validate:"gte=0,lte=1"`
}

// Load は環境変数から設定を読み込む。
func Load() Config {
	return Config{
		DatabaseDriver:        getEnv("DATABASE_DRIVER", "mysql"),
		DatabaseURL:           os.Getenv("DATABASE_URL"),
		DatabaseURLCiphertext: os.Getenv("DATABASE_URL_CIPHERTEXT"),
		KMSKeyName:            os.Getenv("KMS_KEY_NAME"),
		MigrationsDir:         getEnv("MIGRATIONS_DIR", DefaultMigrationsDir),
		VersionTable:          getEnv("VERSION_TABLE", DefaultVersionTable),
		VersionColumn:         getEnv("VERSION_COLUMN", DefaultVersionColumn),
		Port:                  getEnv("PORT", "8080"),
		LogLevel:              getEnv("LOG_LEVEL", "INFO"),
		GoogleCloudProject:    os.Getenv("GOOGLE_CLOUD_PROJECT"),
		OtelEnabled:           getEnvBool("OTEL_ENABLED", false),
		OtelEndpoint:          os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		OtelServiceName:       getEnv("OTEL_SERVICE_NAME", "database-migrator"),
		OtelSamplingRate:      getEnvFloat("OTEL_SAMPLING_RATE", 1.0),
	}
}

// Validate は設定値を検証する。
func (c Config) Validate() error {
	v := validator.New()
	if err := v.RegisterValidation("identifier", func(fl validator.FieldLevel) bool {
		return identifierRegex.MatchString(fl.Field().String())
	}); err != nil {
		return err
	}
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidConfig, err)
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	b, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultVal
	}
	return b
}

func getEnvFloat(key string, defaultVal float64) float64 {
	f, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return defaultVal
	}
	return f
}
