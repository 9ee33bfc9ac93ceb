package backups

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/julianstephens/topthree/internal/backup"
	"github.com/julianstephens/topthree/internal/cli"
	"github.com/julianstephens/topthree/internal/constants"
	"github.com/julianstephens/topthree/internal/storage"
	"github.com/julianstephens/topthree/internal/storage/sqlite"
)

func setupTestContext(t *testing.T) (*cli.Context, *sqlite.Store) {
	t.Helper()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "topthree.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return &cli.Context{Store: store}, store
}

func TestBackupCreateAndList(t *testing.T) {
	ctx, store := setupTestContext(t)

	if err := (&BackupCreateCmd{}).Run(ctx); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := (&BackupListCmd{}).Run(ctx); err != nil {
		t.Fatalf("list: %v", err)
	}

	backups, err := backup.NewManager(store.GetConfigPath()).ListBackups()
	if err != nil {
		t.Fatal(err)
	}
	if len(backups) != 1 {
		t.Errorf("got %d backups, want 1", len(backups))
	}
}

func TestBackupRestoreByName(t *testing.T) {
	ctx, store := setupTestContext(t)
	if err := store.Set(constants.KeyTodayTexts, "original"); err != nil {
		t.Fatal(err)
	}

	mgr := backup.NewManager(store.GetConfigPath())
	backupPath, err := mgr.CreateBackup()
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Set(constants.KeyTodayTexts, "changed"); err != nil {
		t.Fatal(err)
	}

	cmd := &BackupRestoreCmd{BackupFile: filepath.Base(backupPath), Yes: true}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("restore: %v", err)
	}

	if err := store.Load(); err != nil {
		t.Fatal(err)
	}
	got, err := store.Get(constants.KeyTodayTexts)
	if err != nil {
		t.Fatal(err)
	}
	if got != "original" {
		t.Errorf("restored value = %q, want %q", got, "original")
	}
}

func TestBackupRestoreMissingFile(t *testing.T) {
	ctx, _ := setupTestContext(t)
	cmd := &BackupRestoreCmd{BackupFile: "topthree-19990101-000000.db", Yes: true}
	if err := cmd.Run(ctx); err == nil {
		t.Error("expected error for missing backup")
	}
}

func TestBackupRequiresSQLite(t *testing.T) {
	ctx := &cli.Context{Store: storage.NewMemoryStore()}
	if err := (&BackupCreateCmd{}).Run(ctx); !errors.Is(err, errNotSQLite) {
		t.Errorf("got %v, want errNotSQLite", err)
	}
}
