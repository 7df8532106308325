package fic

import "io"

// FilesystemManager abstracts file access so the engine can be tested
// without touching the real filesystem.
type FilesystemManager interface {
	// Resolve validates a raw path and returns a Path object.
	// It resolves the path to an absolute path, stats it, and validates
	// it's a regular file or directory (not a symlink, device, etc.).
	Resolve(rawPath string) (*Path, error)

	// Open opens the tracked file for reading. When the file does not
	// exist the returned error must satisfy errors.Is(err, fs.ErrNotExist)
	// so the engine can tell Missing apart from an I/O failure.
	Open(identity string) (io.ReadCloser, error)
}

// Path is a validated filesystem path. Paths are created by
// FilesystemManager.Resolve, which guarantees the path is absolute and
// pointed at something that existed at resolution time.
type Path struct {
	absPath string
	isDir   bool
	size    int64
}

// NewPath creates a Path from its components.
// This is primarily for use by FilesystemManager implementations.
func NewPath(absPath string, isDir bool, size int64) *Path {
	return &Path{absPath: absPath, isDir: isDir, size: size}
}

// String returns the absolute path.
func (p *Path) String() string { return p.absPath }

// IsDir returns true if this path points to a directory.
func (p *Path) IsDir() bool { return p.isDir }

// Size returns the cached size from when the path was resolved.
func (p *Path) Size() int64 { return p.size }
