package fic

import (
	"bytes"
	"fmt"
	"runtime"
	"sync"

	"fic-go/internal/archive"
	"fic-go/internal/model"
)

// Service is the database facade coordinating the record store, the
// verification engine and the digest provider. It is what the CLI (or
// any other front end) calls.
//
// Mutating operations are serialized by a single write lock. A
// verify-all run holds the lock for the whole batch so an add, remove
// or import can never delete a record out from under an in-flight
// verification; the per-record checks inside the batch still run
// concurrently because they touch disjoint records.
type Service struct {
	store     RecordStore
	fsmgr     FilesystemManager
	digester  Digester
	archives  ArchiveStore
	encryptor Encryptor
	logger    Logger
	clock     Clock
	idgen     IDGenerator
	workers   int

	mu sync.RWMutex
}

// NewService creates a Service with the provided dependencies.
// workers bounds the verify-all fan-out; values < 1 mean NumCPU.
func NewService(store RecordStore, fsmgr FilesystemManager, digester Digester, archives ArchiveStore, encryptor Encryptor, logger Logger, clock Clock, idgen IDGenerator, workers int) *Service {
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	return &Service{
		store:     store,
		fsmgr:     fsmgr,
		digester:  digester,
		archives:  archives,
		encryptor: encryptor,
		logger:    logger,
		clock:     clock,
		idgen:     idgen,
		workers:   workers,
	}
}

// Add tracks the file at path, computing its digest from the current
// content. Adding an identity that is already tracked overwrites the
// record entirely: new digest, checkCount reset to 1, new addedAt. This
// is the deliberate re-baseline operation, not an error; the returned
// bool reports whether an existing record was replaced.
func (s *Service) Add(path *Path, description string) (*model.Record, bool, error) {
	if path.IsDir() {
		return nil, false, fmt.Errorf("%w: %s is a directory", ErrFileUnreadable, path.String())
	}

	f, err := s.fsmgr.Open(path.String())
	if err != nil {
		return nil, false, fmt.Errorf("%w: %s: %v", ErrFileUnreadable, path.String(), err)
	}
	defer f.Close()

	digest, size, err := s.digester.Sum(f)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %s: %v", ErrFileUnreadable, path.String(), err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.store.Get(path.String())
	if err != nil {
		return nil, false, fmt.Errorf("looking up record: %w", err)
	}

	now := s.clock.Now()
	rec := &model.Record{
		Identity:      path.String(),
		Digest:        digest,
		Algorithm:     s.digester.Algorithm(),
		SizeBytes:     size,
		AddedAt:       now,
		LastCheckedAt: now,
		Status:        model.StatusVerified,
		Description:   description,
		CheckCount:    1,
	}
	if err := s.store.Put(rec); err != nil {
		return nil, false, fmt.Errorf("storing record: %w", err)
	}

	if existing != nil {
		s.logger.Info("record re-baselined", "identity", rec.Identity, "digest", digest)
	} else {
		s.logger.Info("record added", "identity", rec.Identity, "digest", digest)
	}
	return rec, existing != nil, nil
}

// Remove deletes the record for an identity.
func (s *Service) Remove(identity string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	deleted, err := s.store.Delete(identity)
	if err != nil {
		return fmt.Errorf("deleting record: %w", err)
	}
	if !deleted {
		return fmt.Errorf("%w: %s", ErrNotTracked, identity)
	}
	s.logger.Info("record removed", "identity", identity)
	return nil
}

// List returns all records in identity order.
func (s *Service) List() ([]*model.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store.List()
}

// Export serializes the whole store to the destination reference.
// When encrypt is true the archive is encrypted with the configured
// public key before upload. Returns the number of records exported.
func (s *Service) Export(dest string, encrypt bool) (int, error) {
	s.mu.RLock()
	records, err := s.store.List()
	s.mu.RUnlock()
	if err != nil {
		return 0, fmt.Errorf("listing records: %w", err)
	}

	doc := archive.New(s.idgen.New(), s.clock.Now(), records)
	var buf bytes.Buffer
	if err := archive.Encode(&buf, doc); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrPersistFailure, err)
	}

	payload := &buf
	if encrypt {
		if s.encryptor == nil || !s.encryptor.IsConfigured() {
			return 0, fmt.Errorf("encryption requested but no keys are configured")
		}
		var enc bytes.Buffer
		if err := s.encryptor.Encrypt(payload, &enc); err != nil {
			return 0, fmt.Errorf("encrypting archive: %w", err)
		}
		payload = &enc
	}

	if err := s.archives.Put(dest, payload); err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrPersistFailure, dest, err)
	}

	s.logger.Info("database exported", "destination", dest, "records", len(records), "encrypted", encrypt)
	return len(records), nil
}

// Import loads an archive from the source reference and combines it
// with the store per the strategy. A nil DecryptionContext imports a
// plaintext archive. The store is untouched if the archive is invalid.
func (s *Service) Import(src string, strategy MergeStrategy, dec DecryptionContext) (int, error) {
	var raw bytes.Buffer
	if err := s.archives.Get(src, &raw); err != nil {
		return 0, fmt.Errorf("reading archive %s: %w", src, err)
	}

	payload := &raw
	if dec != nil {
		var plain bytes.Buffer
		if err := dec.Decrypt(payload, &plain); err != nil {
			return 0, fmt.Errorf("decrypting archive: %w", err)
		}
		payload = &plain
	}

	doc, err := archive.Decode(payload)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrCorruptDatabase, src, err)
	}
	records := doc.ToRecords()

	s.mu.Lock()
	defer s.mu.Unlock()

	switch strategy {
	case StrategyReplace:
		err = s.store.ReplaceAll(records)
	case StrategyMerge:
		err = s.store.MergeAll(records)
	default:
		return 0, fmt.Errorf("unknown import strategy %q", strategy)
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrPersistFailure, err)
	}

	s.logger.Info("database imported", "source", src, "strategy", string(strategy), "records", len(records))
	return len(records), nil
}

// History returns the most recent mutating operations, newest first.
func (s *Service) History(limit int) ([]*model.CheckOperation, error) {
	return s.store.ListOperations(limit)
}

// Unlock exposes the encryptor's passphrase unlock for import --decrypt.
func (s *Service) Unlock(passphrase string) (DecryptionContext, error) {
	if s.encryptor == nil || !s.encryptor.IsConfigured() {
		return nil, fmt.Errorf("no encryption keys are configured")
	}
	return s.encryptor.Unlock(passphrase)
}
