package vault_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fic-go/internal/vault"
)

func TestFileSystemStore_PutGet(t *testing.T) {
	t.Parallel()
	store := vault.NewFileSystemStore()
	dest := filepath.Join(t.TempDir(), "exports", "backup.json")

	if err := store.Put(dest, strings.NewReader("archive body")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	var buf bytes.Buffer
	if err := store.Get(dest, &buf); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if buf.String() != "archive body" {
		t.Errorf("Get() = %q", buf.String())
	}
}

func TestFileSystemStore_OverwriteIsAtomic(t *testing.T) {
	t.Parallel()
	store := vault.NewFileSystemStore()
	dir := t.TempDir()
	dest := filepath.Join(dir, "backup.json")

	if err := store.Put(dest, strings.NewReader("v1")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := store.Put(dest, strings.NewReader("v2")); err != nil {
		t.Fatalf("Put(overwrite) error = %v", err)
	}

	b, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(b) != "v2" {
		t.Errorf("content = %q, want v2", b)
	}

	// No temp files left behind.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".tmp-") {
			t.Errorf("leftover temp file %q", e.Name())
		}
	}
}

func TestFileSystemStore_FailedWriteKeepsPrevious(t *testing.T) {
	t.Parallel()
	store := vault.NewFileSystemStore()
	dir := t.TempDir()
	dest := filepath.Join(dir, "backup.json")

	if err := store.Put(dest, strings.NewReader("good")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := store.Put(dest, failingReader{}); err == nil {
		t.Fatal("Put() with failing reader succeeded, want error")
	}

	b, _ := os.ReadFile(dest)
	if string(b) != "good" {
		t.Errorf("previous archive damaged: %q", b)
	}
	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".tmp-") {
			t.Errorf("leftover temp file %q", e.Name())
		}
	}
}

func TestFileSystemStore_GetMissing(t *testing.T) {
	t.Parallel()
	store := vault.NewFileSystemStore()
	var buf bytes.Buffer
	if err := store.Get(filepath.Join(t.TempDir(), "absent.json"), &buf); err == nil {
		t.Fatal("Get(missing) succeeded, want error")
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, os.ErrClosed }
