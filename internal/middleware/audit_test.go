package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestWriteAuditLog(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	WriteAuditLog(context.Background(), NewAuditLog("MIGRATE_UP", "run-1", 2, 5, AuditResultFailed))

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log output: %v", err)
	}

	if entry["level"] != "ERROR" {
		t.Errorf("expected ERROR level for failed result, got %v", entry["level"])
	}
	if entry["operation"] != "MIGRATE_UP" || entry["run_id"] != "run-1" {
		t.Errorf("unexpected entry: %v", entry)
	}
	if entry["from_version"] != float64(2) || entry["to_version"] != float64(5) {
		t.Errorf("unexpected versions: %v -> %v", entry["from_version"], entry["to_version"])
	}
	if entry["timestamp"] == "" {
		t.Error("expected timestamp")
	}
}
