// Package domain はドメインモデルとビジネスルールを定義する。
package domain

// MigrationStatus はマイグレーションの適用状態を表す
type MigrationStatus string

const (
	MigrationStatusPending MigrationStatus = "pending"
	MigrationStatusApplied MigrationStatus = "applied"
)

// MigrationFile はバージョン番号を持つマイグレーションファイルを表すドメインモデル
type MigrationFile struct {
	Version  int64  // ファイル名から抽出したバージョン番号
	FilePath string // マイグレーションファイルのパス
}

// PendingSet は未適用マイグレーションの集合を表す。
// Migrations はバージョン昇順で、すべて現在のバージョンより大きい。
type PendingSet struct {
	Migrations    []MigrationFile
	TargetVersion int64 // 適用後のバージョン（Migrations の最大値）
}

// Empty は適用対象が存在しない場合に true を返す。
func (p *PendingSet) Empty() bool {
	return p == nil || len(p.Migrations) == 0
}

// BatchResult は一回の実行結果を表す。
type BatchResult struct {
	RunID           string
	PreviousVersion int64
	CurrentVersion  int64
	Applied         []MigrationFile
}

// NoOp は何も適用されなかった場合に true を返す。
func (r *BatchResult) NoOp() bool {
	return len(r.Applied) == 0
}

// MigrationState は状態表示用のマイグレーション情報
type MigrationState struct {
	MigrationFile
	Status MigrationStatus
}

// StatusReport はデータベースの現在バージョンと各ファイルの適用状態
type StatusReport struct {
	CurrentVersion int64
	TargetVersion  int64
	Migrations     []MigrationState
}

// PendingCount は未適用のマイグレーション数を返す。
func (r *StatusReport) PendingCount() int {
	n := 0
	for _, m := range r.Migrations {
		if m.Status == MigrationStatusPending {
			n++
		}
	}
	return n
}
