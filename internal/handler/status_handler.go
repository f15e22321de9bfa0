// Package handler はマイグレーション状態を参照するHTTPハンドラを提供する。
// 参照専用であり、HTTP経由でマイグレーションを適用することはない。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"database-migrator/internal/domain"
	"database-migrator/pkg/httputil"
)

// StatusProvider はマイグレーション状態を取得するインターフェース。
type StatusProvider interface {
	GetMigrationStatus(ctx context.Context) (*domain.StatusReport, error)
}

// StatusHandler はHTTPハンドラを提供する。
type StatusHandler struct {
	service StatusProvider
}

// NewStatusHandler は新しいStatusHandlerを生成する。
func NewStatusHandler(service StatusProvider) *StatusHandler {
	return &StatusHandler{service: service}
}

// MigrationResponse はマイグレーションファイルのレスポンス形式。
type MigrationResponse struct {
	Version int64  `json:"version"`
	File    string `json:"file"`
	Status  string `json:"status"`
}

// StatusResponse はマイグレーション状態のレスポンス形式。
type StatusResponse struct {
	CurrentVersion int64               `json:"current_version"`
	TargetVersion  int64               `json:"target_version"`
	PendingCount   int                 `json:"pending_count"`
	UpToDate       bool                `json:"up_to_date"`
	Migrations     []MigrationResponse `json:"migrations"`
}

func toStatusResponse(report *domain.StatusReport) StatusResponse {
	migrations := make([]MigrationResponse, len(report.Migrations))
	for i, m := range report.Migrations {
		migrations[i] = MigrationResponse{
			Version: m.Version,
			File:    m.FilePath,
			Status:  string(m.Status),
		}
	}
	pending := report.PendingCount()
	return StatusResponse{
		CurrentVersion: report.CurrentVersion,
		TargetVersion:  report.TargetVersion,
		PendingCount:   pending,
		UpToDate:       pending == 0,
		Migrations:     migrations,
	}
}

// GetStatus はデータベースの現在バージョンと各ファイルの適用状態を返す。
func (h *StatusHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	report, ok := h.loadStatus(w, r)
	if !ok {
		return
	}
	httputil.JSON(w, http.StatusOK, toStatusResponse(report))
}

// Ready は未適用マイグレーションがなければ200、あれば503を返す。
func (h *StatusHandler) Ready(w http.ResponseWriter, r *http.Request) {
	report, ok := h.loadStatus(w, r)
	if !ok {
		return
	}
	resp := toStatusResponse(report)
	if !resp.UpToDate {
		httputil.JSON(w, http.StatusServiceUnavailable, resp)
		return
	}
	httputil.JSON(w, http.StatusOK, resp)
}

// Health はプロセスの生存確認用。
func (h *StatusHandler) Health(w http.ResponseWriter, r *http.Request) {
	httputil.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *StatusHandler) loadStatus(w http.ResponseWriter, r *http.Request) (*domain.StatusReport, bool) {
	report, err := h.service.GetMigrationStatus(r.Context())
	if err == nil {
		return report, true
	}

	slog.ErrorContext(r.Context(), "failed to get migration status",
		"operation", "get_status",
		"error", err,
	)
	switch {
	case errors.Is(err, domain.ErrMalformedFilename):
		httputil.Error(w, http.StatusInternalServerError, "MALFORMED_FILENAME", "migration file name has no version number")
	case errors.Is(err, domain.ErrDuplicateVersion):
		httputil.Error(w, http.StatusInternalServerError, "DUPLICATE_VERSION", "duplicate migration version")
	case errors.Is(err, domain.ErrVersionReadFailed):
		httputil.Error(w, http.StatusServiceUnavailable, "VERSION_READ_FAILED", "unable to read database version")
	default:
		httputil.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
	return nil, false
}
