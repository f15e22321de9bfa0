package infra

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ListMigrationFiles はmigrationsディレクトリ直下の.sqlファイルのパスを返す。
// バージョン番号の解釈は行わない。
func ListMigrationFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(files)

	return files, nil
}
