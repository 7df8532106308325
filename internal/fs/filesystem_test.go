package fs_test

import (
	"errors"
	"io"
	iofs "io/fs"
	"os"
	"path/filepath"
	"testing"

	"fic-go/internal/fs"
)

// Not parallel: the relative-path subtest changes the working directory.
func TestOSFilesystemManager_Resolve(t *testing.T) {
	mgr := fs.NewOSFilesystemManager()
	dir := t.TempDir()

	t.Run("regular file", func(t *testing.T) {
		file := filepath.Join(dir, "doc.txt")
		if err := os.WriteFile(file, []byte("hello"), 0644); err != nil {
			t.Fatal(err)
		}
		p, err := mgr.Resolve(file)
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if p.IsDir() {
			t.Error("IsDir() = true for a file")
		}
		if p.Size() != 5 {
			t.Errorf("Size() = %d, want 5", p.Size())
		}
		if !filepath.IsAbs(p.String()) {
			t.Errorf("path %q is not absolute", p.String())
		}
	})

	t.Run("relative path becomes absolute", func(t *testing.T) {
		file := filepath.Join(dir, "rel.txt")
		if err := os.WriteFile(file, nil, 0644); err != nil {
			t.Fatal(err)
		}
		wd, err := os.Getwd()
		if err != nil {
			t.Fatal(err)
		}
		if err := os.Chdir(dir); err != nil {
			t.Fatal(err)
		}
		t.Cleanup(func() {
			if err := os.Chdir(wd); err != nil {
				t.Fatal(err)
			}
		})
		p, err := mgr.Resolve("rel.txt")
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if p.String() != file {
			t.Errorf("String() = %q, want %q", p.String(), file)
		}
	})

	t.Run("directory", func(t *testing.T) {
		p, err := mgr.Resolve(dir)
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if !p.IsDir() {
			t.Error("IsDir() = false for a directory")
		}
	})

	t.Run("missing path", func(t *testing.T) {
		if _, err := mgr.Resolve(filepath.Join(dir, "ghost")); err == nil {
			t.Fatal("Resolve(missing) succeeded")
		}
	})

	t.Run("symlink is rejected", func(t *testing.T) {
		target := filepath.Join(dir, "target.txt")
		if err := os.WriteFile(target, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
		link := filepath.Join(dir, "link.txt")
		if err := os.Symlink(target, link); err != nil {
			t.Skipf("symlinks unavailable: %v", err)
		}
		if _, err := mgr.Resolve(link); err == nil {
			t.Fatal("Resolve(symlink) succeeded")
		}
	})
}

func TestOSFilesystemManager_Open(t *testing.T) {
	t.Parallel()
	mgr := fs.NewOSFilesystemManager()
	dir := t.TempDir()

	file := filepath.Join(dir, "doc.txt")
	if err := os.WriteFile(file, []byte("content"), 0644); err != nil {
		t.Fatal(err)
	}

	rc, err := mgr.Open(file)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer rc.Close()
	b, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if string(b) != "content" {
		t.Errorf("content = %q", b)
	}

	// Missing files must map to fs.ErrNotExist for the missing-status transition.
	_, err = mgr.Open(filepath.Join(dir, "gone.txt"))
	if !errors.Is(err, iofs.ErrNotExist) {
		t.Fatalf("Open(missing) error = %v, want fs.ErrNotExist", err)
	}
}
