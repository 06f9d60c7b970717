package kvstore_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	_ "modernc.org/sqlite"

	"podmatch/internal/kvstore"
)

func openStore(t *testing.T) *kvstore.Store {
	t.Helper()
	store, err := kvstore.Open(filepath.Join(t.TempDir(), "nested", "session.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSetGetRoundTrip(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	if _, ok, err := store.Get(ctx, "token"); err != nil || ok {
		t.Fatalf("expected missing key, got ok=%v err=%v", ok, err)
	}
	if err := store.Set(ctx, "token", "abc"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := store.Set(ctx, "token", "def"); err != nil {
		t.Fatalf("Set overwrite failed: %v", err)
	}
	value, ok, err := store.Get(ctx, "token")
	if err != nil || !ok {
		t.Fatalf("Get failed: ok=%v err=%v", ok, err)
	}
	if value != "def" {
		t.Fatalf("expected overwritten value def, got %q", value)
	}
}

func TestDeleteRemovesOnlyNamedKeys(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	for _, key := range []string{"token", "refreshToken", "userData", "userType", "other"} {
		if err := store.Set(ctx, key, "v"); err != nil {
			t.Fatalf("Set %s failed: %v", key, err)
		}
	}
	if err := store.Delete(ctx, "token", "refreshToken", "userData", "userType", "absent"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	keys, err := store.Keys(ctx)
	if err != nil {
		t.Fatalf("Keys failed: %v", err)
	}
	if !reflect.DeepEqual(keys, []string{"other"}) {
		t.Fatalf("unexpected keys after delete: %v", keys)
	}
	if err := store.Delete(ctx); err != nil {
		t.Fatalf("Delete with no keys failed: %v", err)
	}
}

func TestValuesSurviveReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.db")
	store, err := kvstore.Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := store.Set(context.Background(), "userType", "expert"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := kvstore.Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()
	value, ok, err := reopened.Get(context.Background(), "userType")
	if err != nil || !ok || value != "expert" {
		t.Fatalf("unexpected value after reopen: %q ok=%v err=%v", value, ok, err)
	}
	if reopened.Path() != path {
		t.Fatalf("expected path %s, got %s", path, reopened.Path())
	}
}

func TestOpenRejectsSchemaMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.db")
	store, err := kvstore.Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	_ = store.Close()

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open raw db: %v", err)
	}
	if _, err := db.Exec("UPDATE schema_version SET version = 99"); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	_ = db.Close()

	if _, err := kvstore.Open(path); !errors.Is(err, kvstore.ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := kvstore.Open("  "); err == nil {
		t.Fatal("expected error for blank path")
	}
}
