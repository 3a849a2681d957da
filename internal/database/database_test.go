package database

import (
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"), nil)
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestGetMissingKey(t *testing.T) {
	db := openTestDB(t)
	value, ok, err := db.Get("dailypen_profile")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected missing key")
	}
	if value != "" {
		t.Errorf("expected empty value, got %q", value)
	}
}

func TestSetAndGet(t *testing.T) {
	db := openTestDB(t)
	if err := db.Set("dailypen_start_date", `"2026-02-06"`); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	value, ok, err := db.Get("dailypen_start_date")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok || value != `"2026-02-06"` {
		t.Errorf("expected stored date, got %q (ok=%v)", value, ok)
	}
}

func TestSetOverwrites(t *testing.T) {
	db := openTestDB(t)
	db.Set("k", "[]")
	db.Set("k", "[1]")

	value, _, _ := db.Get("k")
	if value != "[1]" {
		t.Errorf("expected overwritten value, got %q", value)
	}

	keys, _ := db.Keys()
	if len(keys) != 1 {
		t.Errorf("expected 1 key, got %d", len(keys))
	}
}

func TestDelete(t *testing.T) {
	db := openTestDB(t)
	db.Set("a", "1")
	db.Set("b", "2")
	db.Set("c", "3")

	if err := db.Delete("a", "b", "missing"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	keys, err := db.Keys()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(keys) != 1 || keys[0] != "c" {
		t.Errorf("expected only 'c' to remain, got %v", keys)
	}

	if err := db.Delete(); err != nil {
		t.Errorf("expected no-op delete to succeed, got %v", err)
	}
}

func TestGetStats(t *testing.T) {
	db := openTestDB(t)
	stats, err := db.GetStats()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Keys != 0 {
		t.Errorf("expected 0 keys, got %d", stats.Keys)
	}
	if stats.LastWrite != nil {
		t.Error("expected no last write on empty db")
	}

	db.Set("a", "12345")
	stats, _ = db.GetStats()
	if stats.Keys != 1 {
		t.Errorf("expected 1 key, got %d", stats.Keys)
	}
	if stats.ValueBytes != 5 {
		t.Errorf("expected 5 bytes, got %d", stats.ValueBytes)
	}
	if stats.LastWrite == nil {
		t.Error("expected last write timestamp")
	}
}

func TestPersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "persist.db")
	db1, err := Open(path, nil)
	if err != nil {
		t.Fatalf("first Open: %v", err)
	}
	db1.Set("dailypen_streaks", "[]")
	db1.Close()

	db2, err := Open(path, nil)
	if err != nil {
		t.Fatalf("second Open: %v", err)
	}
	defer db2.Close()

	value, ok, _ := db2.Get("dailypen_streaks")
	if !ok || value != "[]" {
		t.Errorf("expected value to persist, got %q (ok=%v)", value, ok)
	}
}
