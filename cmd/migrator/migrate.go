package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"database-migrator/internal/domain"
	"database-migrator/internal/infra"
	"database-migrator/internal/middleware"
	"database-migrator/internal/repository"
	"database-migrator/internal/usecase"
)

// openService はDB接続とマイグレーションファイル一覧を用意し、MigrationServiceを組み立てる。
// 返される close 関数で接続を解放する。
func openService(ctx context.Context, opts *rootOptions) (*usecase.MigrationService, func() error, error) {
	cfg := opts.cfg

	dsn, err := resolveDSN(ctx, opts)
	if err != nil {
		return nil, nil, err
	}

	// 絶対パスに変換
	absPath, err := filepath.Abs(cfg.MigrationsDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to resolve migrations directory: %w", err)
	}
	files, err := infra.ListMigrationFiles(absPath)
	if err != nil {
		return nil, nil, err
	}

	// データベース接続
	db, err := infra.NewDB(dsn, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	repo := repository.NewVersionRepository(db, cfg.VersionTable, cfg.VersionColumn)
	service := usecase.NewMigrationService(repo, usecase.NewExecutor(nil), db, files)

	return service, func() error { return infra.CloseDB(db) }, nil
}

// resolveDSN は暗号化された接続文字列が設定されていればKMSで復号する。
func resolveDSN(ctx context.Context, opts *rootOptions) (dsn string, err error) {
	cfg := opts.cfg
	// --dsn が明示された場合はそちらを優先する
	if cfg.DatabaseURLCiphertext == "" || opts.dsn != "" {
		return cfg.DatabaseURL, nil
	}

	kmsClient, err := infra.NewKMSClient(ctx, cfg.KMSKeyName)
	if err != nil {
		return "", fmt.Errorf("failed to init KMS client: %w", err)
	}
	defer func() {
		err = multierr.Append(err, kmsClient.Close())
	}()

	return infra.ResolveDatabaseURL(ctx, cfg, kmsClient)
}

// upCmd は未適用マイグレーションを適用するコマンド。
func upCmd(opts *rootOptions) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		Long:  "Apply all pending migrations in a single transaction and advance the version table",
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			ctx := cmd.Context()

			service, closeDB, err := openService(ctx, opts)
			if err != nil {
				return err
			}
			defer func() {
				err = multierr.Append(err, closeDB())
			}()

			if dryRun {
				report, err := service.GetMigrationStatus(ctx)
				if err != nil {
					return fmt.Errorf("failed to get migration status: %w", err)
				}
				printPlan(cmd.OutOrStdout(), report)
				return nil
			}

			// マイグレーション実行
			result, err := service.ApplyMigrations(ctx)
			if err != nil {
				// 失敗時はロールバック済みのためバージョンは変化していない
				middleware.WriteAuditLog(ctx, middleware.NewAuditLog("MIGRATE_UP", "", 0, 0, middleware.AuditResultFailed))
				return fmt.Errorf("migration failed: %w", err)
			}

			out := cmd.OutOrStdout()
			if result.NoOp() {
				middleware.WriteAuditLog(ctx, middleware.NewAuditLog("MIGRATE_UP", result.RunID,
					result.PreviousVersion, result.CurrentVersion, middleware.AuditResultNoOp))
				fmt.Fprintf(out, "No matching migrations to run (database at version %d).\n", result.CurrentVersion)
				return nil
			}

			middleware.WriteAuditLog(ctx, middleware.NewAuditLog("MIGRATE_UP", result.RunID,
				result.PreviousVersion, result.CurrentVersion, middleware.AuditResultSuccess))
			for _, m := range result.Applied {
				fmt.Fprintf(out, "Applied %d\t%s\n", m.Version, filepath.Base(m.FilePath))
			}
			fmt.Fprintf(out, "Applied %d migration(s), now at version %d.\n", len(result.Applied), result.CurrentVersion)
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show pending migrations without applying them")
	return cmd
}

// printPlan は適用予定のマイグレーションを表示する。
func printPlan(out io.Writer, report *domain.StatusReport) {
	if report.PendingCount() == 0 {
		fmt.Fprintf(out, "No matching migrations to run (database at version %d).\n", report.CurrentVersion)
		return
	}
	for _, m := range report.Migrations {
		if m.Status == domain.MigrationStatusPending {
			fmt.Fprintf(out, "Would apply %d\t%s\n", m.Version, filepath.Base(m.FilePath))
		}
	}
	fmt.Fprintf(out, "%d migration(s) pending, version %d -> %d.\n",
		report.PendingCount(), report.CurrentVersion, report.TargetVersion)
}

// statusCmd はマイグレーション状況を表示するコマンド。
func statusCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		Long:  "Show the current database version and the status of all migrations (applied/pending)",
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			ctx := cmd.Context()

			service, closeDB, err := openService(ctx, opts)
			if err != nil {
				return err
			}
			defer func() {
				err = multierr.Append(err, closeDB())
			}()

			report, err := service.GetMigrationStatus(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Current version: %d\n\n", report.CurrentVersion)

			// テーブル形式で出力
			w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "VERSION\tFILE\tSTATUS")
			fmt.Fprintln(w, "-------\t----\t------")
			for _, m := range report.Migrations {
				fmt.Fprintf(w, "%d\t%s\t%s\n", m.Version, filepath.Base(m.FilePath), m.Status)
			}

			if err := w.Flush(); err != nil {
				return fmt.Errorf("failed to flush output: %w", err)
			}
			return nil
		},
	}
}
