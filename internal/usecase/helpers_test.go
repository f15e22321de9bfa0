package usecase

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"database-migrator/internal/repository"
)

// setupTestMigrationsDir はテスト用のmigrationsディレクトリを作成し、ファイルパス一覧を返す。
func setupTestMigrationsDir(t *testing.T, files map[string]string) []string {
	t.Helper()

	migrationsDir := filepath.Join(t.TempDir(), "migrations")
	if err := os.MkdirAll(migrationsDir, 0755); err != nil {
		t.Fatalf("failed to create migrations dir: %v", err)
	}

	paths := make([]string, 0, len(files))
	for filename, content := range files {
		filePath := filepath.Join(migrationsDir, filename)
		if err := os.WriteFile(filePath, []byte(content), 0644); err != nil {
			t.Fatalf("failed to create test migration file: %v", err)
		}
		paths = append(paths, filePath)
	}
	sort.Strings(paths)

	return paths
}

func defaultMigrationFiles() map[string]string {
	return map[string]string{
		"001_create_users.sql":    "CREATE TABLE users (id INT);",
		"002_create_posts.sql":    "CREATE TABLE posts (id INT);",
		"003_create_comments.sql": "CREATE TABLE comments (id INT);",
	}
}

// setupTestDB はテスト用のSQLiteデータベースを作成する。
// seed を指定した場合はバージョンテーブルにその値の行を入れる。
func setupTestDB(t *testing.T, seed ...int64) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.Exec("CREATE TABLE versionTable (version INTEGER)").Error; err != nil {
		t.Fatalf("failed to create versionTable: %v", err)
	}
	for _, v := range seed {
		if err := db.Exec("INSERT INTO versionTable (version) VALUES (?)", v).Error; err != nil {
			t.Fatalf("failed to seed versionTable: %v", err)
		}
	}

	return db
}

func newTestRepository(db *gorm.DB) *repository.VersionRepository {
	return repository.NewVersionRepository(db, "versionTable", "version")
}

func tableExists(t *testing.T, db *gorm.DB, table string) bool {
	t.Helper()

	var count int64
	if err := db.Raw("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&count).Error; err != nil {
		t.Fatalf("failed to check table %s: %v", table, err)
	}
	return count == 1
}

func currentVersion(t *testing.T, db *gorm.DB) int64 {
	t.Helper()

	v, err := newTestRepository(db).ReadCurrentVersion(context.Background())
	if err != nil {
		t.Fatalf("ReadCurrentVersion failed: %v", err)
	}
	return v
}

// recordingReader は読み込んだファイルを記録する FileReader を返す。
func recordingReader(read *[]string) FileReader {
	return func(filePath string) ([]byte, error) {
		*read = append(*read, filepath.Base(filePath))
		return os.ReadFile(filePath)
	}
}
