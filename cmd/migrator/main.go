// Package main はマイグレーションCLIのエントリポイント。
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"database-migrator/config"
	"database-migrator/internal/domain"
	"database-migrator/internal/infra"
)

const version = "1.0.0"

// 終了コード。失敗の種類ごとに運用者が区別できるようにする。
const (
	exitOK                 = 0
	exitGeneric            = 1
	exitVersionReadFailed  = 2
	exitMalformedFilename  = 3
	exitDuplicateVersion   = 4
	exitExecutionFailed    = 6
	exitVersionWriteFailed = 7
)

// rootOptions はグローバルフラグと初期化済みの設定を保持する。
type rootOptions struct {
	driver        string
	dsn           string
	migrationsDir string
	versionTable  string
	versionColumn string
	logLevel      string

	cfg            config.Config
	tracerProvider *sdktrace.TracerProvider
}

func main() {
	// .envファイルを読み込む（存在しない場合は無視）
	// 既存の環境変数は上書きしない
	_ = godotenv.Load()

	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run はコマンドを実行して終了コードを返す。
func run(args []string, stdout, stderr io.Writer) int {
	opts := &rootOptions{}
	rootCmd := newRootCmd(opts)
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	err := rootCmd.Execute()

	if opts.tracerProvider != nil {
		if shutdownErr := opts.tracerProvider.Shutdown(context.Background()); shutdownErr != nil {
			slog.Error("failed to shutdown tracer", "error", shutdownErr)
		}
	}

	if err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return exitCode(err)
	}
	return exitOK
}

func newRootCmd(opts *rootOptions) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "migrator",
		Short:         "Apply versioned SQL migrations",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.init(cmd)
		},
	}

	// グローバルフラグ（未指定の場合は環境変数の値を使う）
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.driver, "driver", "", "Database driver: mysql, postgres, sqlite (or set DATABASE_DRIVER)")
	flags.StringVar(&opts.dsn, "dsn", "", "Database connection string (or set DATABASE_URL)")
	flags.StringVar(&opts.migrationsDir, "dir", "", "Migrations directory (or set MIGRATIONS_DIR)")
	flags.StringVar(&opts.versionTable, "table", "", "Version table name (or set VERSION_TABLE)")
	flags.StringVar(&opts.versionColumn, "column", "", "Version column name (or set VERSION_COLUMN)")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level: DEBUG, INFO, WARN, ERROR (or set LOG_LEVEL)")

	// サブコマンド登録
	rootCmd.AddCommand(upCmd(opts))
	rootCmd.AddCommand(statusCmd(opts))
	rootCmd.AddCommand(serveCmd(opts))
	rootCmd.AddCommand(versionCmd())

	return rootCmd
}

// init は環境変数とフラグから設定を構築し、ロガーとトレーサーを初期化する。
func (o *rootOptions) init(cmd *cobra.Command) error {
	cfg := config.Load()

	flags := cmd.Flags()
	overrides := []struct {
		name  string
		value string
		dest  *string
	}{
		{"driver", o.driver, &cfg.DatabaseDriver},
		{"dsn", o.dsn, &cfg.DatabaseURL},
		{"dir", o.migrationsDir, &cfg.MigrationsDir},
		{"table", o.versionTable, &cfg.VersionTable},
		{"column", o.versionColumn, &cfg.VersionColumn},
		{"log-level", o.logLevel, &cfg.LogLevel},
	}
	for _, ov := range overrides {
		if flags.Changed(ov.name) {
			*ov.dest = ov.value
		}
	}

	if cmd.Name() == "version" {
		o.cfg = cfg
		return nil
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	// トレーサー初期化（ロガー設定の前に実行）
	tp, err := infra.InitTracer(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("failed to init tracer: %w", err)
	}
	o.tracerProvider = tp

	infra.SetupLogger(cfg, cmd.ErrOrStderr())

	o.cfg = cfg
	return nil
}

// exitCode はエラーの種類に対応する終了コードを返す。
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, domain.ErrVersionReadFailed):
		return exitVersionReadFailed
	case errors.Is(err, domain.ErrMalformedFilename):
		return exitMalformedFilename
	case errors.Is(err, domain.ErrDuplicateVersion):
		return exitDuplicateVersion
	case errors.Is(err, domain.ErrExecutionFailed):
		return exitExecutionFailed
	case errors.Is(err, domain.ErrVersionWriteFailed):
		return exitVersionWriteFailed
	default:
		return exitGeneric
	}
}

// versionCmd はバージョン情報を表示する。
func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "migrator version %s\n", version)
		},
	}
}
