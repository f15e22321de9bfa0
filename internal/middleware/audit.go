// Package middleware は横断的なログ出力を提供する。
package middleware

import (
	"context"
	"log/slog"
	"time"
)

const (
	AuditResultSuccess = "SUCCESS"
	AuditResultNoOp    = "NOOP"
	AuditResultFailed  = "FAILED"
)

// AuditLog は監査ログの構造体。
type AuditLog struct {
	Operation   string `json:"operation"`
	RunID       string `json:"run_id,omitempty"`
	FromVersion int64  `json:"from_version"`
	ToVersion   int64  `json:"to_version"`
	Result      string `json:"result"`
	Timestamp   string `json:"timestamp"`
}

// NewAuditLog は現在時刻の監査ログを生成する。
func NewAuditLog(operation, runID string, fromVersion, toVersion int64, result string) AuditLog {
	return AuditLog{
		Operation:   operation,
		RunID:       runID,
		FromVersion: fromVersion,
		ToVersion:   toVersion,
		Result:      result,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	}
}

// WriteAuditLog は監査ログを出力する。
func WriteAuditLog(ctx context.Context, entry AuditLog) {
	level := slog.LevelInfo
	if entry.Result == AuditResultFailed {
		level = slog.LevelError
	}
	slog.Log(ctx, level, "migration operation completed",
		"operation", entry.Operation,
		"run_id", entry.RunID,
		"from_version", entry.FromVersion,
		"to_version", entry.ToVersion,
		"result", entry.Result,
		"timestamp", entry.Timestamp,
	)
}
