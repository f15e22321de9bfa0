package domain

import "errors"

var (
	// ErrMalformedFilename はファイル名からバージョン番号を取得できない場合のエラー。
	ErrMalformedFilename = errors.New("malformed migration filename")

	// ErrDuplicateVersion は複数のファイルが同じバージョン番号を持つ場合のエラー。
	ErrDuplicateVersion = errors.New("duplicate migration version")

	// ErrVersionReadFailed はバージョンテーブルの読み込みに失敗した場合のエラー。
	ErrVersionReadFailed = errors.New("version read failed")

	// ErrExecutionFailed はマイグレーションSQLの実行に失敗した場合のエラー。
	ErrExecutionFailed = errors.New("migration execution failed")

	// ErrVersionWriteFailed はバージョンテーブルの更新に失敗した場合のエラー。
	ErrVersionWriteFailed = errors.New("version write failed")

	// ErrInvalidConfig は設定値が不正な場合のエラー。
	ErrInvalidConfig = errors.New("invalid config")
)
