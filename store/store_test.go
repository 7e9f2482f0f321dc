package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"testing"

	"github.com/meshworks/gridnode/uid"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

type testDisk struct {
	store *Disk
	dir   string
}

func (t *testDisk) Cleanup() error {
	if err := t.store.Close(); err != nil {
		return err
	}
	return os.RemoveAll(t.dir)
}

func createTestDisk() (*testDisk, error) {
	dir, err := os.MkdirTemp(os.TempDir(), "gridnode_store_test_*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir for test: %w", err)
	}
	d, err := NewDisk(DiskConfig{
		Logger:    testLogger(),
		Directory: dir,
	})
	if err != nil {
		return nil, err
	}
	return &testDisk{store: d, dir: dir}, nil
}

// -------------------------- TESTS

func TestMemory_SaveGetDelete(t *testing.T) {
	m := NewMemory(testLogger())

	t.Run("save then get", func(t *testing.T) {
		id := uid.New()
		if err := m.Save(id, 42); err != nil {
			t.Fatalf("Save() error = %v, wantErr nil", err)
		}
		got, err := m.Get(id)
		if err != nil {
			t.Fatalf("Get() error = %v, wantErr nil", err)
		}
		if got != 42 {
			t.Errorf("Get() got = %v, want 42", got)
		}
	})

	t.Run("get absent identifier", func(t *testing.T) {
		_, err := m.Get(uid.New())
		var notFound *ErrNotFound
		if !errors.As(err, &notFound) {
			t.Errorf("Get() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("overwrite is last write wins", func(t *testing.T) {
		id := uid.New()
		if err := m.Save(id, "first"); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		if err := m.Save(id, "second"); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		got, err := m.Get(id)
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if got != "second" {
			t.Errorf("Get() got = %v, want second", got)
		}
	})

	t.Run("delete then get is not found", func(t *testing.T) {
		id := uid.New()
		if err := m.Save(id, "gone soon"); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		if err := m.Delete(id); err != nil {
			t.Fatalf("Delete() error = %v, wantErr nil", err)
		}
		_, err := m.Get(id)
		var notFound *ErrNotFound
		if !errors.As(err, &notFound) {
			t.Errorf("Get() after delete error = %v, want ErrNotFound", err)
		}
	})

	t.Run("delete absent identifier", func(t *testing.T) {
		err := m.Delete(uid.New())
		var notFound *ErrNotFound
		if !errors.As(err, &notFound) {
			t.Errorf("Delete() error = %v, want ErrNotFound", err)
		}
	})
}

func TestMemory_Len(t *testing.T) {
	m := NewMemory(testLogger())
	if m.Len() != 0 {
		t.Fatalf("Len() = %d on empty store", m.Len())
	}
	ids := make([]uid.UID, 5)
	for i := range ids {
		ids[i] = uid.New()
		if err := m.Save(ids[i], i); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}
	if m.Len() != 5 {
		t.Errorf("Len() = %d, want 5", m.Len())
	}
	if err := m.Delete(ids[0]); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if m.Len() != 4 {
		t.Errorf("Len() = %d after delete, want 4", m.Len())
	}
}

func TestDisk_SaveGetDelete(t *testing.T) {
	td, err := createTestDisk()
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	defer td.Cleanup()

	t.Run("save then get", func(t *testing.T) {
		id := uid.New()
		if err := td.store.Save(id, "payload"); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		got, err := td.store.Get(id)
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if got != "payload" {
			t.Errorf("Get() got = %v, want payload", got)
		}
	})

	t.Run("last write wins", func(t *testing.T) {
		id := uid.New()
		if err := td.store.Save(id, "one"); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		if err := td.store.Save(id, "two"); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		got, err := td.store.Get(id)
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if got != "two" {
			t.Errorf("Get() got = %v, want two", got)
		}
	})

	t.Run("delete absent identifier", func(t *testing.T) {
		err := td.store.Delete(uid.New())
		var notFound *ErrNotFound
		if !errors.As(err, &notFound) {
			t.Errorf("Delete() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("delete then get", func(t *testing.T) {
		id := uid.New()
		if err := td.store.Save(id, "ephemeral"); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		if err := td.store.Delete(id); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		_, err := td.store.Get(id)
		var notFound *ErrNotFound
		if !errors.As(err, &notFound) {
			t.Errorf("Get() after delete error = %v, want ErrNotFound", err)
		}
	})
}

func TestDisk_SurvivesReopen(t *testing.T) {
	dir, err := os.MkdirTemp(os.TempDir(), "gridnode_store_reopen_*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(dir)

	id := uid.New()

	d, err := NewDisk(DiskConfig{Logger: testLogger(), Directory: dir})
	if err != nil {
		t.Fatalf("NewDisk() error = %v", err)
	}
	if err := d.Save(id, "durable"); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := d.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	d, err = NewDisk(DiskConfig{Logger: testLogger(), Directory: dir})
	if err != nil {
		t.Fatalf("NewDisk() reopen error = %v", err)
	}
	defer d.Close()

	got, err := d.Get(id)
	if err != nil {
		t.Fatalf("Get() after reopen error = %v", err)
	}
	if got != "durable" {
		t.Errorf("Get() after reopen got = %v, want durable", got)
	}
}

func TestMemory_ConcurrentAccess(t *testing.T) {
	m := NewMemory(testLogger())
	id := uid.New()
	if err := m.Save(id, 0); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 1000; i++ {
			_ = m.Save(id, i)
		}
	}()

	for {
		select {
		case <-done:
			got, err := m.Get(id)
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if got != 999 {
				t.Errorf("Get() got = %v, want 999", got)
			}
			return
		case <-ctx.Done():
			t.Fatal("context cancelled")
		default:
			if _, err := m.Get(id); err != nil {
				t.Fatalf("Get() during writes error = %v", err)
			}
		}
	}
}
