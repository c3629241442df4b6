package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// exerciseSlot runs the behavior every Slot backend must share.
func exerciseSlot(t *testing.T, s Slot) {
	t.Helper()
	ctx := context.Background()

	if _, err := s.Get(ctx, "missing"); !errors.Is(err, ErrSlotEmpty) {
		t.Fatalf("Get(missing) error = %v, want ErrSlotEmpty", err)
	}

	if err := s.Set(ctx, "k", []byte("one")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Set(ctx, "k", []byte("two")); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	got, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "two" {
		t.Errorf("Get = %q, want %q", got, "two")
	}

	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, "k"); !errors.Is(err, ErrSlotEmpty) {
		t.Errorf("Get after Delete error = %v, want ErrSlotEmpty", err)
	}
	if err := s.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete of absent key: %v", err)
	}
}

func TestMemorySlot(t *testing.T) {
	s := NewMemorySlot()
	defer s.Close()
	exerciseSlot(t, s)
}

// TestMemorySlotCopies verifies callers cannot mutate stored bytes.
func TestMemorySlotCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemorySlot()
	buf := []byte("abc")
	_ = s.Set(ctx, "k", buf)
	buf[0] = 'x'

	got, _ := s.Get(ctx, "k")
	if string(got) != "abc" {
		t.Errorf("stored value changed to %q", got)
	}
}

func TestSQLiteSlot(t *testing.T) {
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "nested", "mapty.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer s.Close()
	exerciseSlot(t, s)
}

// TestSQLiteSlotPersistsAcrossOpen verifies data survives a reopen.
func TestSQLiteSlotPersistsAcrossOpen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "mapty.db")

	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	if err := s.Set(ctx, WorkoutsKey, []byte("[]")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	s.Close()

	s, err = OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	got, err := s.Get(ctx, WorkoutsKey)
	if err != nil || string(got) != "[]" {
		t.Errorf("Get after reopen = %q, %v", got, err)
	}
}

func TestBadgerSlot(t *testing.T) {
	s, err := OpenBadger("")
	if err != nil {
		t.Fatalf("OpenBadger: %v", err)
	}
	defer s.Close()
	exerciseSlot(t, s)
}

// TestPostgresSlot runs against a real database when MAPTY_TEST_POSTGRES_DSN
// is set.
func TestPostgresSlot(t *testing.T) {
	dsn := os.Getenv("MAPTY_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("MAPTY_TEST_POSTGRES_DSN not set")
	}
	if err := RunMigrations(dsn); err != nil {
		t.Fatalf("RunMigrations: %v", err)
	}
	db, err := New(context.Background(), dsn)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer db.Close()
	exerciseSlot(t, db)
}
