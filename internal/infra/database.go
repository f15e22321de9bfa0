// Package infra は外部サービスとの接続を提供する。
package infra

import (
	"fmt"
	"time"

	"go.uber.org/multierr"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"

	"database-migrator/config"
)

// NewDialector はドライバ名に対応するgormのDialectorを返す。
// MySQLで複数ステートメントのファイルを流す場合はDSNに multiStatements=true が必要。
func NewDialector(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case "mysql":
		return mysql.Open(dsn), nil
	case "postgres":
		return postgres.Open(dsn), nil
	case "sqlite":
		return sqlite.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// NewDB はgormによるデータベース接続を初期化する。
func NewDB(dsn string, cfg config.Config) (*gorm.DB, error) {
	dialector, err := NewDialector(cfg.DatabaseDriver, dsn)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	if cfg.OtelEnabled {
		if err := db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
			return nil, multierr.Append(fmt.Errorf("registering tracing plugin: %w", err), CloseDB(db))
		}
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// 単発実行のため接続は最小限にする
	sqlDB.SetMaxOpenConns(2)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return db, nil
}

// CloseDB は下位の接続プールを閉じる。
func CloseDB(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
