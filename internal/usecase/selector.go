package usecase

import (
	"fmt"
	"sort"

	"database-migrator/internal/domain"
)

// ParseMigrationFiles は候補ファイルのバージョン番号を抽出し、バージョン昇順に並べて返す。
// 1ファイルでもバージョン番号を取得できなければ ErrMalformedFilename、
// 同じバージョン番号のファイルが複数あれば ErrDuplicateVersion を返す。
func ParseMigrationFiles(files []string) ([]domain.MigrationFile, error) {
	seen := make(map[int64]string, len(files))
	migrations := make([]domain.MigrationFile, 0, len(files))

	for _, filePath := range files {
		version, ok := ExtractVersion(filePath)
		// スキップすると適用漏れが起きるため、読めないファイルがあれば全体を止める
		if !ok || version <= 0 {
			return nil, fmt.Errorf("%w: unable to determine version number of %s", domain.ErrMalformedFilename, filePath)
		}

		if other, exists := seen[version]; exists {
			return nil, fmt.Errorf("%w: version %d is used by both %s and %s", domain.ErrDuplicateVersion, version, other, filePath)
		}
		seen[version] = filePath

		migrations = append(migrations, domain.MigrationFile{
			Version:  version,
			FilePath: filePath,
		})
	}

	// バージョン順にソート
	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})

	return migrations, nil
}

// SelectPending は現在のバージョンより新しいマイグレーションを昇順で返す。
// 対象がない場合はエラーではなく空の PendingSet を返す（TargetVersion は current のまま）。
func SelectPending(current int64, files []string) (*domain.PendingSet, error) {
	migrations, err := ParseMigrationFiles(files)
	if err != nil {
		return nil, err
	}

	set := &domain.PendingSet{TargetVersion: current}
	for _, m := range migrations {
		if m.Version > current {
			set.Migrations = append(set.Migrations, m)
		}
	}

	if !set.Empty() {
		set.TargetVersion = set.Migrations[len(set.Migrations)-1].Version
	}

	return set, nil
}
