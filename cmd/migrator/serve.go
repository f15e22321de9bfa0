package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"database-migrator/internal/handler"
)

// serveCmd はマイグレーション状態を返す参照専用のHTTPサーバーを起動する。
func serveCmd(opts *rootOptions) *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve read-only migration status over HTTP",
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			ctx := cmd.Context()
			if cmd.Flags().Changed("port") {
				opts.cfg.Port = port
			}

			service, closeDB, err := openService(ctx, opts)
			if err != nil {
				return err
			}
			defer func() {
				err = multierr.Append(err, closeDB())
			}()

			h := handler.NewStatusHandler(service)
			router := handler.NewRouter(h, opts.cfg)

			server := &http.Server{
				Addr:              ":" + opts.cfg.Port,
				Handler:           router,
				ReadHeaderTimeout: 10 * time.Second,
			}

			// Graceful shutdown
			go func() {
				sigCh := make(chan os.Signal, 1)
				signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
				<-sigCh

				slog.Info("shutting down server...")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					slog.Error("server shutdown error", "error", err)
				}
			}()

			slog.Info("starting server", "port", opts.cfg.Port)
			if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			slog.Info("server stopped")
			return nil
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "Listen port (or set PORT)")
	return cmd
}
