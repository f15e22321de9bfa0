// Package usecase はアプリケーションのユースケースを実装する。
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"database-migrator/internal/domain"
)

var tracer = otel.Tracer("database-migrator/internal/usecase")

// VersionRepository はバージョンテーブルを管理するリポジトリのインターフェース。
type VersionRepository interface {
	ReadCurrentVersion(ctx context.Context) (int64, error)
	WriteNewVersion(ctx context.Context, tx *gorm.DB, newVersion, expectedCurrent int64) error
}

// MigrationService はマイグレーション実行のビジネスロジックを提供する。
// 一回の実行でデータベース接続とトランザクションを専有する。
type MigrationService struct {
	repo     VersionRepository
	executor *Executor
	db       *gorm.DB
	files    []string
}

// NewMigrationService は新しいMigrationServiceを生成する。
func NewMigrationService(repo VersionRepository, executor *Executor, db *gorm.DB, files []string) *MigrationService {
	if executor == nil {
		executor = NewExecutor(nil)
	}
	return &MigrationService{
		repo:     repo,
		executor: executor,
		db:       db,
		files:    append([]string(nil), files...),
	}
}

// ApplyMigrations は未適用マイグレーションを単一トランザクション内で番号順に実行し、
// バージョンテーブルを更新する。途中で失敗した場合はロールバックしてエラーを返す。
// 適用対象がない場合はトランザクションを開始せずに NoOp の結果を返す。
func (s *MigrationService) ApplyMigrations(ctx context.Context) (*domain.BatchResult, error) {
	runID := uuid.NewString()
	ctx, span := tracer.Start(ctx, "migration.apply")
	defer span.End()
	span.SetAttributes(attribute.String("migration.run_id", runID))

	logger := slog.Default().With("run_id", runID)

	currentVersion, err := s.repo.ReadCurrentVersion(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "version read failed")
		return nil, err
	}
	logger.InfoContext(ctx, "current database version",
		"operation", "apply_migrations",
		"version", currentVersion,
	)

	pending, err := SelectPending(currentVersion, s.files)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "selection failed")
		logger.ErrorContext(ctx, "failed to select migrations",
			"operation", "apply_migrations",
			"error", err,
		)
		return nil, err
	}

	result := &domain.BatchResult{
		RunID:           runID,
		PreviousVersion: currentVersion,
		CurrentVersion:  currentVersion,
	}

	if pending.Empty() {
		logger.InfoContext(ctx, "no matching migrations to run",
			"operation", "apply_migrations",
			"version", currentVersion,
		)
		return result, nil
	}

	span.SetAttributes(
		attribute.Int64("migration.previous_version", currentVersion),
		attribute.Int64("migration.target_version", pending.TargetVersion),
		attribute.Int("migration.count", len(pending.Migrations)),
	)

	// 全マイグレーションとバージョン更新が成功するまでコミットしない
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.executor.Execute(ctx, tx, pending); err != nil {
			return err
		}
		return s.repo.WriteNewVersion(ctx, tx, pending.TargetVersion, currentVersion)
	})
	if err != nil {
		if !isMigrationError(err) {
			err = fmt.Errorf("migration transaction: %w", err)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "rolled back")
		logger.ErrorContext(ctx, "migration rolled back",
			"operation", "apply_migrations",
			"version", currentVersion,
			"target_version", pending.TargetVersion,
			"error", err,
		)
		return nil, err
	}

	result.CurrentVersion = pending.TargetVersion
	result.Applied = pending.Migrations

	logger.InfoContext(ctx, "database migrated",
		"operation", "apply_migrations",
		"previous_version", currentVersion,
		"version", pending.TargetVersion,
		"applied", len(pending.Migrations),
	)
	return result, nil
}

// GetMigrationStatus は現在のマイグレーション状況を取得する。
// ファイル名の検証は ApplyMigrations と同じ規則で行う。
func (s *MigrationService) GetMigrationStatus(ctx context.Context) (*domain.StatusReport, error) {
	currentVersion, err := s.repo.ReadCurrentVersion(ctx)
	if err != nil {
		return nil, err
	}

	migrations, err := ParseMigrationFiles(s.files)
	if err != nil {
		slog.ErrorContext(ctx, "failed to parse migration files",
			"operation", "get_migration_status",
			"error", err,
		)
		return nil, err
	}

	report := &domain.StatusReport{
		CurrentVersion: currentVersion,
		TargetVersion:  currentVersion,
		Migrations:     make([]domain.MigrationState, len(migrations)),
	}
	for i, m := range migrations {
		status := domain.MigrationStatusApplied
		if m.Version > currentVersion {
			status = domain.MigrationStatusPending
			report.TargetVersion = m.Version
		}
		report.Migrations[i] = domain.MigrationState{MigrationFile: m, Status: status}
	}

	return report, nil
}

func isMigrationError(err error) bool {
	for _, target := range []error{
		domain.ErrExecutionFailed,
		domain.ErrVersionWriteFailed,
		domain.ErrVersionReadFailed,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
