package keystore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/nerrad567/gray-logic-sensor/internal/infrastructure/database"
	_ "github.com/nerrad567/gray-logic-sensor/migrations" // Registers key_store schema
)

// openTestStore opens a migrated store in a temporary directory.
func openTestStore(t *testing.T, path string) (*SQLiteStore, *database.DB) {
	t.Helper()

	db, err := database.Open(database.Config{Path: path, BusyTimeout: 5})
	if err != nil {
		t.Fatalf("database.Open() error = %v", err)
	}
	if err := db.Migrate(context.Background()); err != nil {
		db.Close() //nolint:errcheck // Test cleanup
		t.Fatalf("Migrate() error = %v", err)
	}
	return NewSQLiteStore(db.DB), db
}

func TestSQLiteStore_GetAbsent(t *testing.T) {
	store, db := openTestStore(t, filepath.Join(t.TempDir(), "ks.db"))
	defer db.Close() //nolint:errcheck // Test cleanup

	value, ok, err := store.Get(context.Background(), "influxdb")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if ok || value != "" {
		t.Errorf("Get() = (%q, %v), want (\"\", false)", value, ok)
	}
}

func TestSQLiteStore_EmptyValueIsPresent(t *testing.T) {
	ctx := context.Background()
	store, db := openTestStore(t, filepath.Join(t.TempDir(), "ks.db"))
	defer db.Close() //nolint:errcheck // Test cleanup

	if err := store.Set(ctx, "jwt", ""); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	value, ok, err := store.Get(ctx, "jwt")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !ok {
		t.Fatal("Get() ok = false, want true for empty value")
	}
	if value != "" {
		t.Errorf("Get() = %q, want empty", value)
	}
}

func TestSQLiteStore_SetOverwrites(t *testing.T) {
	ctx := context.Background()
	store, db := openTestStore(t, filepath.Join(t.TempDir(), "ks.db"))
	defer db.Close() //nolint:errcheck // Test cleanup

	if err := store.Set(ctx, "sleep_interval", "60"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := store.Set(ctx, "sleep_interval", "30"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	value, _, err := store.Get(ctx, "sleep_interval")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if value != "30" {
		t.Errorf("Get() = %q, want 30", value)
	}
}

func TestSQLiteStore_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "ks.db")

	store, db := openTestStore(t, path)
	if err := store.Set(ctx, "client_id", "abc"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	store, db = openTestStore(t, path)
	defer db.Close() //nolint:errcheck // Test cleanup

	value, ok, err := store.Get(ctx, "client_id")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !ok || value != "abc" {
		t.Errorf("Get() = (%q, %v), want (abc, true)", value, ok)
	}
}

func TestSQLiteStore_ClosedDatabase(t *testing.T) {
	store, db := openTestStore(t, filepath.Join(t.TempDir(), "ks.db"))
	db.Close() //nolint:errcheck // Closing to force failures

	err := store.Set(context.Background(), "k", "v")
	if !errors.Is(err, ErrStorage) {
		t.Errorf("Set() error = %v, want ErrStorage", err)
	}
	_, _, err = store.Get(context.Background(), "k")
	if !errors.Is(err, ErrStorage) {
		t.Errorf("Get() error = %v, want ErrStorage", err)
	}
}

func TestForget(t *testing.T) {
	ctx := context.Background()
	store, db := openTestStore(t, filepath.Join(t.TempDir(), "ks.db"))
	defer db.Close() //nolint:errcheck // Test cleanup

	for _, k := range []string{"jwt", "sensor_pin", "client_id"} {
		if err := store.Set(ctx, k, "x"); err != nil {
			t.Fatalf("Set(%s) error = %v", k, err)
		}
	}

	if err := Forget(ctx, store, "jwt", "sensor_pin", "never_set"); err != nil {
		t.Fatalf("Forget() error = %v", err)
	}

	for k, want := range map[string]bool{"jwt": false, "sensor_pin": false, "client_id": true} {
		_, ok, err := store.Get(ctx, k)
		if err != nil {
			t.Fatalf("Get(%s) error = %v", k, err)
		}
		if ok != want {
			t.Errorf("Get(%s) ok = %v, want %v", k, ok, want)
		}
	}
}
