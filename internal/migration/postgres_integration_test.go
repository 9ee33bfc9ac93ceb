package migration

import (
	"database/sql"
	"os"
	"testing"
	"testing/fstest"

	_ "github.com/lib/pq"
)

// Set POSTGRES_TEST_URL to run these, e.g.
// POSTGRES_TEST_URL="postgres://user@localhost:5432/testdb?sslmode=disable"
func setupPostgresTestDB(t *testing.T) *sql.DB {
	t.Helper()
	connStr := os.Getenv("POSTGRES_TEST_URL")
	if connStr == "" {
		t.Skip("POSTGRES_TEST_URL not set, skipping PostgreSQL integration test")
	}

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		t.Fatalf("failed to open postgres database: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Fatalf("failed to ping postgres database: %v", err)
	}

	t.Cleanup(func() {
		db.Exec("DROP TABLE IF EXISTS schema_version")
		db.Exec("DROP TABLE IF EXISTS test_kv")
		db.Close()
	})
	return db
}

func TestPostgresApplyMigrations(t *testing.T) {
	db := setupPostgresTestDB(t)

	fsys := fstest.MapFS{
		"001_init.sql":  {Data: []byte("CREATE TABLE test_kv (key TEXT PRIMARY KEY, value TEXT NOT NULL);")},
		"002_index.sql": {Data: []byte("CREATE INDEX idx_test_kv_value ON test_kv(value);")},
	}
	runner := NewRunner(db, fsys)

	count, err := runner.ApplyMigrations()
	if err != nil {
		t.Fatalf("ApplyMigrations failed: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 migrations applied, got %d", count)
	}

	version, err := runner.GetCurrentVersion()
	if err != nil {
		t.Fatalf("GetCurrentVersion failed: %v", err)
	}
	if version != 2 {
		t.Errorf("expected version 2, got %d", version)
	}

	count, err = runner.ApplyMigrations()
	if err != nil {
		t.Fatalf("ApplyMigrations (2nd) failed: %v", err)
	}
	if count != 0 {
		t.Errorf("expected 0 migrations on second run, got %d", count)
	}
}

func TestPostgresMigrationRollbackOnError(t *testing.T) {
	db := setupPostgresTestDB(t)

	runner := NewRunner(db, fstest.MapFS{
		"001_bad.sql": {Data: []byte("CREATE TABLE test_kv (key TEXT PRIMARY KEY); THIS IS INVALID SQL;")},
	})

	if _, err := runner.ApplyMigrations(); err == nil {
		t.Fatal("ApplyMigrations should have failed with invalid SQL")
	}

	version, err := runner.GetCurrentVersion()
	if err != nil {
		t.Fatalf("GetCurrentVersion failed: %v", err)
	}
	if version != 0 {
		t.Errorf("expected version 0 after failed migration, got %d", version)
	}

	var exists bool
	err = db.QueryRow("SELECT EXISTS (SELECT FROM information_schema.tables WHERE table_name = 'test_kv')").Scan(&exists)
	if err != nil {
		t.Fatalf("failed to check test_kv table: %v", err)
	}
	if exists {
		t.Error("test_kv table should not exist after rollback")
	}
}
