package vault

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"fic-go/internal/fic"
)

// FileSystemStore writes archives to local files. Writes go to a temp
// file in the destination directory and are renamed into place, so the
// destination is never observed half-written and a failed write leaves
// any previous file intact.
type FileSystemStore struct{}

// NewFileSystemStore creates an archive store for local paths.
func NewFileSystemStore() *FileSystemStore { return &FileSystemStore{} }

// Put streams r to the destination path atomically.
func (s *FileSystemStore) Put(ref string, r io.Reader) error {
	dir := filepath.Dir(ref)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating destination directory: %w", err)
	}

	// Temp file in the same directory so the rename is atomic.
	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := io.Copy(tmpFile, r); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write archive: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, ref); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}

// Get reads the archive at the source path into w.
func (s *FileSystemStore) Get(ref string, w io.Writer) error {
	f, err := os.Open(ref)
	if err != nil {
		return fmt.Errorf("opening archive: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("reading archive: %w", err)
	}
	return nil
}

// Compile-time check that FileSystemStore implements fic.ArchiveStore.
var _ fic.ArchiveStore = (*FileSystemStore)(nil)
