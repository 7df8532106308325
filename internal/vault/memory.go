package vault

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"fic-go/internal/fic"
)

// MemoryStore keeps archives in memory. Use in tests.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

// NewMemoryStore creates an empty in-memory archive store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (s *MemoryStore) Put(ref string, r io.Reader) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("reading archive: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[ref] = b
	return nil
}

func (s *MemoryStore) Get(ref string, w io.Writer) error {
	s.mu.Lock()
	b, ok := s.data[ref]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("archive not found: %s", ref)
	}
	_, err := io.Copy(w, bytes.NewReader(b))
	return err
}

// Compile-time check that MemoryStore implements fic.ArchiveStore.
var _ fic.ArchiveStore = (*MemoryStore)(nil)
