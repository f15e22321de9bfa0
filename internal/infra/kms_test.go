package infra

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"

	"database-migrator/config"
)

// mockDecrypter はテスト用のモック。
type mockDecrypter struct {
	plaintext  []byte
	err        error
	ciphertext []byte
}

func (m *mockDecrypter) Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error) {
	m.ciphertext = ciphertext
	if m.err != nil {
		return nil, m.err
	}
	return m.plaintext, nil
}

func TestResolveDatabaseURL(t *testing.T) {
	ctx := context.Background()

	t.Run("plain", func(t *testing.T) {
		cfg := config.Config{DatabaseURL: "user:pass@tcp(localhost:3306)/app"}
		got, err := ResolveDatabaseURL(ctx, cfg, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != cfg.DatabaseURL {
			t.Errorf("expected %s, got %s", cfg.DatabaseURL, got)
		}
	})

	t.Run("encrypted", func(t *testing.T) {
		d := &mockDecrypter{plaintext: []byte("decrypted-dsn")}
		cfg := config.Config{
			DatabaseURL:           "ignored",
			DatabaseURLCiphertext: base64.StdEncoding.EncodeToString([]byte("ciphertext")),
		}
		got, err := ResolveDatabaseURL(ctx, cfg, d)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "decrypted-dsn" {
			t.Errorf("expected decrypted-dsn, got %s", got)
		}
		if string(d.ciphertext) != "ciphertext" {
			t.Errorf("expected decoded ciphertext, got %q", d.ciphertext)
		}
	})

	t.Run("invalid base64", func(t *testing.T) {
		cfg := config.Config{DatabaseURLCiphertext: "!!not-base64!!"}
		if _, err := ResolveDatabaseURL(ctx, cfg, &mockDecrypter{}); err == nil {
			t.Error("expected error for invalid base64")
		}
	})

	t.Run("decrypt error", func(t *testing.T) {
		decryptErr := errors.New("permission denied")
		cfg := config.Config{DatabaseURLCiphertext: base64.StdEncoding.EncodeToString([]byte("x"))}
		_, err := ResolveDatabaseURL(ctx, cfg, &mockDecrypter{err: decryptErr})
		if !errors.Is(err, decryptErr) {
			t.Errorf("expected decrypt error, got %v", err)
		}
	})

	t.Run("missing client", func(t *testing.T) {
		cfg := config.Config{DatabaseURLCiphertext: base64.StdEncoding.EncodeToString([]byte("x"))}
		if _, err := ResolveDatabaseURL(ctx, cfg, nil); err == nil {
			t.Error("expected error without decrypter")
		}
	})
}
