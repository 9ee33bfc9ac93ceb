package system

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/julianstephens/topthree/internal/backup"
	"github.com/julianstephens/topthree/internal/cli"
	"github.com/julianstephens/topthree/internal/config"
	"github.com/julianstephens/topthree/internal/constants"
	"github.com/julianstephens/topthree/internal/storage/sqlite"
)

func setupTestDoctorDB(t *testing.T) (*cli.Context, *sqlite.Store) {
	t.Helper()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return &cli.Context{Store: store, Config: config.Default(), Offline: true}, store
}

func TestDoctorCmd_HealthyDB(t *testing.T) {
	ctx, _ := setupTestDoctorDB(t)

	// Missing backups is a warning, not a failure
	if err := (&DoctorCmd{}).Run(ctx); err != nil {
		t.Errorf("doctor command failed on healthy database: %v", err)
	}
}

func TestDoctorCmd_BrokenSchema(t *testing.T) {
	ctx, store := setupTestDoctorDB(t)

	db := store.GetDB()
	if db == nil {
		t.Fatal("database connection is nil")
	}
	if _, err := db.Exec("DELETE FROM schema_version"); err != nil {
		t.Fatalf("failed to clear schema version: %v", err)
	}
	if _, err := db.Exec("INSERT INTO schema_version (version) VALUES (999)"); err != nil {
		t.Fatalf("failed to set schema version: %v", err)
	}

	if err := (&DoctorCmd{}).Run(ctx); err == nil {
		t.Error("doctor command should fail on a schema newer than supported")
	}
}

func TestDoctorCmd_CorruptHistory(t *testing.T) {
	ctx, store := setupTestDoctorDB(t)
	if err := store.Set(constants.KeyHistory, "{not json"); err != nil {
		t.Fatal(err)
	}

	if err := (&DoctorCmd{}).Run(ctx); err == nil {
		t.Error("doctor command should fail on undecodable history")
	}
}

func TestCheckSchemaVersion_Incomplete(t *testing.T) {
	ctx, store := setupTestDoctorDB(t)

	current, latest, err := store.SchemaVersion()
	if err != nil {
		t.Fatalf("SchemaVersion failed: %v", err)
	}
	if current != latest {
		t.Fatalf("fresh store should be fully migrated: %d/%d", current, latest)
	}

	if _, err := store.GetDB().Exec("UPDATE schema_version SET version = 0"); err != nil {
		t.Fatal(err)
	}
	if err := checkSchemaVersion(ctx); err == nil {
		t.Error("expected error for incomplete migrations")
	}
}

func TestCheckBackupsPresent(t *testing.T) {
	ctx, store := setupTestDoctorDB(t)

	if err := checkBackupsPresent(ctx); err == nil {
		t.Error("expected warning with no backups")
	}

	if _, err := backup.NewManager(store.GetConfigPath()).CreateBackup(); err != nil {
		t.Fatalf("failed to create backup: %v", err)
	}
	if err := checkBackupsPresent(ctx); err != nil {
		t.Errorf("expected no warning after backup, got %v", err)
	}
}

func TestCheckClockTimezone(t *testing.T) {
	ctx, _ := setupTestDoctorDB(t)
	if err := checkClockTimezone(ctx); err != nil {
		t.Errorf("checkClockTimezone failed with default config: %v", err)
	}

	ctx.Config.Timezone = "Not/AZone"
	if err := checkClockTimezone(ctx); err == nil {
		t.Error("expected error for unknown timezone")
	}
}

func TestCheckRemote_SkippedOffline(t *testing.T) {
	ctx, _ := setupTestDoctorDB(t)
	ctx.Config.Remote.URL = "http://127.0.0.1:1"
	if err := checkRemote(ctx); err != nil {
		t.Errorf("offline doctor should skip the server check, got %v", err)
	}
}

func TestFailureLine(t *testing.T) {
	got := failureLine("Schema version", errors.New("migrations incomplete"))
	want := "❌ Schema version: FAIL\n   Error: migrations incomplete"
	if got != want {
		t.Errorf("failureLine() = %q, want %q", got, want)
	}
}
