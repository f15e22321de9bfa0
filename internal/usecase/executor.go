package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"database-migrator/internal/domain"
)

// FileReader はマイグレーションファイルの内容を読み込む関数。
type FileReader func(filePath string) ([]byte, error)

// Executor はマイグレーションSQLを順番に実行する。
type Executor struct {
	readFile FileReader
}

// NewExecutor は新しいExecutorを生成する。readFile が nil の場合は os.ReadFile を使う。
func NewExecutor(readFile FileReader) *Executor {
	if readFile == nil {
		readFile = os.ReadFile
	}
	return &Executor{readFile: readFile}
}

// Execute は未適用マイグレーションをバージョン昇順に tx 上で実行する。
// 最初に失敗したファイルで中断し、以降のファイルは読み込まない。
// 実行結果は tx がコミットされるまで確定しない。
func (e *Executor) Execute(ctx context.Context, tx *gorm.DB, set *domain.PendingSet) error {
	if set.Empty() {
		return nil
	}

	for _, migration := range set.Migrations {
		if err := e.executeOne(ctx, tx, migration); err != nil {
			return err
		}
	}

	slog.InfoContext(ctx, "migration execution completed",
		"operation", "execute_migrations",
		"count", len(set.Migrations),
	)
	return nil
}

// executeOne は単一のマイグレーションを実行する。
func (e *Executor) executeOne(ctx context.Context, tx *gorm.DB, migration domain.MigrationFile) error {
	ctx, span := tracer.Start(ctx, "migration.execute")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("migration.version", migration.Version),
		attribute.String("migration.file", migration.FilePath),
	)

	slog.InfoContext(ctx, "executing migration",
		"operation", "execute_migration",
		"version", migration.Version,
		"file_path", migration.FilePath,
	)

	// SQLファイルを読み込み
	sqlBytes, err := e.readFile(migration.FilePath)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "read failed")
		slog.ErrorContext(ctx, "failed to read migration file",
			"operation", "execute_migration",
			"version", migration.Version,
			"file_path", migration.FilePath,
			"error", err,
		)
		return fmt.Errorf("%w: version %d: reading %s: %w", domain.ErrExecutionFailed, migration.Version, migration.FilePath, err)
	}

	// 内容はそのまま渡す（複数ステートメントの可否はドライバに依存する）
	if err := tx.WithContext(ctx).Exec(string(sqlBytes)).Error; err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "exec failed")
		slog.ErrorContext(ctx, "failed to execute migration SQL",
			"operation", "execute_migration",
			"version", migration.Version,
			"file_path", migration.FilePath,
			"error", err,
		)
		return fmt.Errorf("%w: version %d: %s: %w", domain.ErrExecutionFailed, migration.Version, migration.FilePath, err)
	}

	slog.InfoContext(ctx, "migration executed",
		"operation", "execute_migration",
		"version", migration.Version,
		"file_path", migration.FilePath,
	)
	return nil
}
