package testutil

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"sync"

	"fic-go/internal/fic"
)

// MockFile represents a file in the mock filesystem.
type MockFile struct {
	Content     []byte
	IsDirectory bool
	// ReadErr, when set, makes Open fail with this error. Use to
	// exercise the unreadable-but-present branch of verification.
	ReadErr error
}

// MockFilesystemManager is an in-memory filesystem for testing.
// Safe for concurrent use; verify-all opens files from multiple goroutines.
type MockFilesystemManager struct {
	mu    sync.Mutex
	files map[string]*MockFile
}

// NewMockFilesystemManager creates a new mock filesystem.
func NewMockFilesystemManager() *MockFilesystemManager {
	return &MockFilesystemManager{files: make(map[string]*MockFile)}
}

// AddFile adds a file to the mock filesystem.
func (m *MockFilesystemManager) AddFile(path string, content []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[path] = &MockFile{Content: content}
}

// AddDirectory adds a directory to the mock filesystem.
func (m *MockFilesystemManager) AddDirectory(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[path] = &MockFile{IsDirectory: true}
}

// RemoveFile deletes a file, as if it were removed from disk.
func (m *MockFilesystemManager) RemoveFile(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, path)
}

// SetReadError makes subsequent opens of path fail with err.
func (m *MockFilesystemManager) SetReadError(path string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if f, ok := m.files[path]; ok {
		f.ReadErr = err
	}
}

func (m *MockFilesystemManager) Resolve(rawPath string) (*fic.Path, error) {
	absPath, err := filepath.Abs(rawPath)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	file, ok := m.files[absPath]
	if !ok {
		return nil, fmt.Errorf("stat %s: %w", absPath, fs.ErrNotExist)
	}

	return fic.NewPath(absPath, file.IsDirectory, int64(len(file.Content))), nil
}

func (m *MockFilesystemManager) Open(identity string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	file, ok := m.files[identity]
	if !ok {
		return nil, fmt.Errorf("open %s: %w", identity, fs.ErrNotExist)
	}
	if file.ReadErr != nil {
		return nil, file.ReadErr
	}
	if file.IsDirectory {
		return nil, fmt.Errorf("cannot open directory: %s", identity)
	}
	return io.NopCloser(bytes.NewReader(file.Content)), nil
}

// Compile-time check
var _ fic.FilesystemManager = (*MockFilesystemManager)(nil)
