// Package fs is the real-filesystem implementation of fic.FilesystemManager.
package fs

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"fic-go/internal/fic"
)

// OSFilesystemManager performs actual filesystem operations using the os package.
type OSFilesystemManager struct{}

// NewOSFilesystemManager creates a filesystem manager for the real filesystem.
func NewOSFilesystemManager() *OSFilesystemManager {
	return &OSFilesystemManager{}
}

// Resolve validates a raw path and returns a Path object.
// Symlinks, devices, pipes and sockets are rejected: an integrity
// record must point at plain file content.
func (m *OSFilesystemManager) Resolve(rawPath string) (*fic.Path, error) {
	absPath, err := filepath.Abs(rawPath)
	if err != nil {
		return nil, fmt.Errorf("resolving absolute path: %w", err)
	}

	info, err := os.Lstat(absPath)
	if err != nil {
		return nil, fmt.Errorf("stat path: %w", err)
	}

	mode := info.Mode()
	if mode&os.ModeSymlink != 0 {
		return nil, fmt.Errorf("symlinks not supported: %s", absPath)
	}
	if mode&os.ModeDevice != 0 {
		return nil, fmt.Errorf("device files not supported: %s", absPath)
	}
	if mode&os.ModeNamedPipe != 0 {
		return nil, fmt.Errorf("named pipes not supported: %s", absPath)
	}
	if mode&os.ModeSocket != 0 {
		return nil, fmt.Errorf("sockets not supported: %s", absPath)
	}

	return fic.NewPath(absPath, info.IsDir(), info.Size()), nil
}

// Open opens a tracked file for reading. A missing file comes back as an
// error satisfying errors.Is(err, fs.ErrNotExist), which the engine maps
// to StatusMissing.
func (m *OSFilesystemManager) Open(identity string) (io.ReadCloser, error) {
	return os.Open(identity)
}

// Compile-time check that OSFilesystemManager implements fic.FilesystemManager.
var _ fic.FilesystemManager = (*OSFilesystemManager)(nil)
