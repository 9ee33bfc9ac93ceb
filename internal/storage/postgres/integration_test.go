package postgres

import (
	"errors"
	"os"
	"testing"

	"github.com/julianstephens/topthree/internal/models"
	"github.com/julianstephens/topthree/internal/storage"
)

// TestStore_Integration exercises the store against a real database.
// Set POSTGRES_TEST_URL to run it, e.g.
// POSTGRES_TEST_URL="postgres://topthree_user@localhost:5432/topthree_test?sslmode=disable"
func TestStore_Integration(t *testing.T) {
	connStr := os.Getenv("POSTGRES_TEST_URL")
	if connStr == "" {
		t.Skip("POSTGRES_TEST_URL not set, skipping PostgreSQL integration test")
	}

	store := New(connStr)
	if err := store.Init(); err != nil {
		t.Fatalf("Failed to initialize store: %v", err)
	}
	defer store.Close()

	t.Run("KV", func(t *testing.T) {
		key := "integration:probe"
		if err := store.Set(key, "one"); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
		if err := store.Set(key, "two"); err != nil {
			t.Fatalf("second Set failed: %v", err)
		}
		got, err := store.Get(key)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if got != "two" {
			t.Errorf("Get() = %q, want two", got)
		}
		if _, err := store.Get("integration:never-set"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
		}
	})

	t.Run("DailyRecords", func(t *testing.T) {
		records := storage.NewDailyRecordStore(storage.Namespaced(store, "integration:"), nil)

		h := models.History{
			"2024-01-15": models.NewDailyRecord("2024-01-15", [3]string{"a", "b", "c"}),
		}
		if err := records.SaveHistory(h); err != nil {
			t.Fatalf("SaveHistory failed: %v", err)
		}
		got := records.LoadHistory()
		if got["2024-01-15"].Texts() != h["2024-01-15"].Texts() {
			t.Errorf("LoadHistory() = %+v, want %+v", got, h)
		}
	})

	t.Run("SchemaVersion", func(t *testing.T) {
		current, latest, err := store.SchemaVersion()
		if err != nil {
			t.Fatalf("SchemaVersion failed: %v", err)
		}
		if current != latest {
			t.Errorf("schema at %d, latest %d", current, latest)
		}
	})
}
