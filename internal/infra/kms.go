package infra

import (
	"context"
	"encoding/base64"
	"fmt"

	kms "cloud.google.com/go/kms/apiv1"
	kmspb "cloud.google.com/go/kms/apiv1/kmspb"

	"database-migrator/config"
)

// Decrypter は暗号文を復号するインターフェース。
type Decrypter interface {
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
}

// KMSClient はCloud KMSクライアントをラップする。
type KMSClient struct {
	client  *kms.KeyManagementClient
	keyName string
}

// NewKMSClient は指定されたキー名で復号するKMSClientを生成する。
func NewKMSClient(ctx context.Context, keyName string) (*KMSClient, error) {
	if keyName == "" {
		return nil, fmt.Errorf("KMS_KEY_NAME is required")
	}

	client, err := kms.NewKeyManagementClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating KMS client: %w", err)
	}

	return &KMSClient{
		client:  client,
		keyName: keyName,
	}, nil
}

// Decrypt は暗号文をCloud KMSで復号する。
func (c *KMSClient) Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error) {
	req := &kmspb.DecryptRequest{
		Name:       c.keyName,
		Ciphertext: ciphertext,
	}
	resp, err := c.client.Decrypt(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("decrypting: %w", err)
	}
	return resp.Plaintext, nil
}

// Close はKMSクライアントを閉じる。
func (c *KMSClient) Close() error {
	return c.client.Close()
}

// ResolveDatabaseURL は接続文字列を返す。
// DATABASE_URL_CIPHERTEXT が設定されていれば base64 デコードして復号した値を優先する。
func ResolveDatabaseURL(ctx context.Context, cfg config.Config, d Decrypter) (string, error) {
	if cfg.DatabaseURLCiphertext == "" {
		return cfg.DatabaseURL, nil
	}
	if d == nil {
		return "", fmt.Errorf("encrypted database URL requires a KMS client")
	}

	ciphertext, err := base64.StdEncoding.DecodeString(cfg.DatabaseURLCiphertext)
	if err != nil {
		return "", fmt.Errorf("decoding database URL ciphertext: %w", err)
	}

	plaintext, err := d.Decrypt(ctx, ciphertext)
	if err != nil {
		return "", fmt.Errorf("decrypting database URL: %w", err)
	}
	return string(plaintext), nil
}
