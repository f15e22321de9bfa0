package repository

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"database-migrator/internal/domain"
)

// VersionRepository はバージョンテーブルへのアクセスを提供する。
// テーブルは事前に作成されている必要があり、このリポジトリは作成しない。
type VersionRepository struct {
	db     *gorm.DB
	table  string
	column string
}

// NewVersionRepository は新しいVersionRepositoryを生成する。
func NewVersionRepository(db *gorm.DB, table, column string) *VersionRepository {
	return &VersionRepository{
		db:     db,
		table:  table,
		column: column,
	}
}

func (r *VersionRepository) versionColumn() clause.Column {
	return clause.Column{Name: r.column}
}

// ReadCurrentVersion は適用済みの最大バージョンを取得する。
// テーブルが空の場合は 0 を返す。複数行ある場合も最大値のみを使う。
func (r *VersionRepository) ReadCurrentVersion(ctx context.Context) (int64, error) {
	var versions []int64
	err := r.db.WithContext(ctx).
		Table(r.table).
		Where(clause.Neq{Column: r.versionColumn(), Value: nil}).
		Order(clause.OrderByColumn{Column: r.versionColumn(), Desc: true}).
		Limit(1).
		Pluck(r.column, &versions).Error
	if err != nil {
		slog.ErrorContext(ctx, "failed to read current version",
			"operation", "read_current_version",
			"table", r.table,
			"column", r.column,
			"error", err,
		)
		return 0, fmt.Errorf("%w: %s.%s: %w", domain.ErrVersionReadFailed, r.table, r.column, err)
	}

	if len(versions) == 0 {
		return 0, nil
	}
	return versions[0], nil
}

// WriteNewVersion は tx 上でバージョンを newVersion に更新する。
// 現在値が expectedCurrent の行がちょうど1行更新されなければエラーとする。
func (r *VersionRepository) WriteNewVersion(ctx context.Context, tx *gorm.DB, newVersion, expectedCurrent int64) error {
	result := tx.WithContext(ctx).
		Table(r.table).
		Where(clause.Eq{Column: r.versionColumn(), Value: expectedCurrent}).
		Update(r.column, newVersion)
	if result.Error != nil {
		slog.ErrorContext(ctx, "failed to update version",
			"operation", "write_new_version",
			"version", newVersion,
			"expected_version", expectedCurrent,
			"error", result.Error,
		)
		return fmt.Errorf("%w: updating %s.%s from %d to %d: %w",
			domain.ErrVersionWriteFailed, r.table, r.column, expectedCurrent, newVersion, result.Error)
	}

	// 0行はバージョン行が存在しないか、他者に書き換えられている
	if result.RowsAffected != 1 {
		slog.ErrorContext(ctx, "unexpected number of version rows updated",
			"operation", "write_new_version",
			"version", newVersion,
			"expected_version", expectedCurrent,
			"rows_affected", result.RowsAffected,
		)
		return fmt.Errorf("%w: updating %s.%s from %d to %d affected %d rows, want 1",
			domain.ErrVersionWriteFailed, r.table, r.column, expectedCurrent, newVersion, result.RowsAffected)
	}

	slog.InfoContext(ctx, "version updated",
		"operation", "write_new_version",
		"previous_version", expectedCurrent,
		"version", newVersion,
	)
	return nil
}
