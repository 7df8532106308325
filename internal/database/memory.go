package database

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"fic-go/internal/fic"
	"fic-go/internal/model"
)

// MemoryStore is an in-memory fic.RecordStore. It backs the "memory"
// database type and keeps unit tests off the filesystem. Records are
// cloned on the way in and out so callers never share state with the index.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*model.Record
	ops     []*model.CheckOperation
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*model.Record)}
}

func (m *MemoryStore) Get(identity string) (*model.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[identity]
	if !ok {
		return nil, nil
	}
	return rec.Clone(), nil
}

func (m *MemoryStore) Put(record *model.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[record.Identity] = record.Clone()
	return nil
}

func (m *MemoryStore) Delete(identity string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[identity]; !ok {
		return false, nil
	}
	delete(m.records, identity)
	return true, nil
}

func (m *MemoryStore) List() ([]*model.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	records := make([]*model.Record, 0, len(m.records))
	for _, rec := range m.records {
		records = append(records, rec.Clone())
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Identity < records[j].Identity })
	return records, nil
}

func (m *MemoryStore) ReplaceAll(records []*model.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	next := make(map[string]*model.Record, len(records))
	for _, rec := range records {
		next[rec.Identity] = rec.Clone()
	}
	m.records = next
	return nil
}

func (m *MemoryStore) MergeAll(records []*model.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rec := range records {
		m.records[rec.Identity] = rec.Clone()
	}
	return nil
}

func (m *MemoryStore) CreateOperation(op *model.CheckOperation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *op
	m.ops = append(m.ops, &c)
	return nil
}

func (m *MemoryStore) FinishOperation(id string, finishedAt time.Time, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, op := range m.ops {
		if op.ID == id {
			op.FinishedAt = finishedAt
			op.Status = status
			return nil
		}
	}
	return fmt.Errorf("finishing operation: no operation with id %s", id)
}

func (m *MemoryStore) ListOperations(limit int) ([]*model.CheckOperation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ops := make([]*model.CheckOperation, len(m.ops))
	for i, op := range m.ops {
		c := *op
		ops[len(m.ops)-1-i] = &c // newest first
	}
	if limit > 0 && len(ops) > limit {
		ops = ops[:limit]
	}
	return ops, nil
}

func (m *MemoryStore) Close() error { return nil }

// Compile-time check that MemoryStore implements fic.RecordStore.
var _ fic.RecordStore = (*MemoryStore)(nil)
