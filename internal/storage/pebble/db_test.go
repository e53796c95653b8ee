package pebblestore

import (
	"context"
	"testing"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(Options{DataDir: t.TempDir(), Fsync: FsyncModeAlways})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestSetGet(t *testing.T) {
	db := openTestDB(t)
	if err := db.Set([]byte("k"), []byte("v")); err != nil {
		t.Fatalf("set: %v", err)
	}
	val, ok, err := db.Get([]byte("k"))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ok || string(val) != "v" {
		t.Fatalf("get mismatch: ok=%v val=%q", ok, val)
	}
}

func TestGetMissingIsNotError(t *testing.T) {
	db := openTestDB(t)
	_, ok, err := db.Get([]byte("absent"))
	if err != nil {
		t.Fatalf("missing key should not error: %v", err)
	}
	if ok {
		t.Fatalf("missing key reported present")
	}
}

func TestBatchCommitAtomic(t *testing.T) {
	db := openTestDB(t)
	b := db.NewBatch()
	defer b.Close()
	if err := b.Set([]byte("a"), []byte("1"), nil); err != nil {
		t.Fatalf("batch set: %v", err)
	}
	if err := b.Set([]byte("b"), []byte("2"), nil); err != nil {
		t.Fatalf("batch set: %v", err)
	}
	if err := db.CommitBatch(context.Background(), b); err != nil {
		t.Fatalf("commit: %v", err)
	}
	for _, k := range []string{"a", "b"} {
		if _, ok, _ := db.Get([]byte(k)); !ok {
			t.Fatalf("key %q missing after commit", k)
		}
	}
}
