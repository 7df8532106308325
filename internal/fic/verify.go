package fic

import (
	"errors"
	"fmt"
	"io/fs"
	"sync"

	"fic-go/internal/model"
)

// Verify runs the verification state machine for one identity:
//
//	no record                  -> StatusUnknown, ErrNotTracked, no mutation
//	file gone (fs.ErrNotExist) -> StatusMissing
//	read fails otherwise       -> status unchanged, ErrVerifyIO
//	digest matches             -> StatusVerified
//	digest differs             -> StatusTampered
//
// Every branch that reaches the record updates lastCheckedAt and
// increments checkCount — a failed check is still a check.
func (s *Service) Verify(identity string) (*VerificationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.store.Get(identity)
	if err != nil {
		return nil, fmt.Errorf("looking up record: %w", err)
	}
	if rec == nil {
		res := &VerificationResult{Identity: identity, Status: model.StatusUnknown}
		return res, fmt.Errorf("%w: %s", ErrNotTracked, identity)
	}

	res := s.checkRecord(rec)
	if err := s.store.Put(rec); err != nil {
		return nil, fmt.Errorf("updating record: %w", err)
	}
	if res.Err != nil {
		return res, res.Err
	}
	return res, nil
}

// VerifyAll verifies every tracked record. Per-record read failures are
// captured in their results and never abort the batch. Checks fan out
// across the worker pool; results come back in identity order so
// completion timing never shows in the output.
func (s *Service) VerifyAll() (*VerifySummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.store.List()
	if err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}

	results := make([]*VerificationResult, len(records))
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < s.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = s.checkRecord(records[i])
			}
		}()
	}
	for i := range records {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	// Persist sequentially; the store is a single mutable structure.
	for _, rec := range records {
		if err := s.store.Put(rec); err != nil {
			return nil, fmt.Errorf("updating record %s: %w", rec.Identity, err)
		}
	}

	sum := summarize(results)
	s.logger.Info("verification complete",
		"records", len(records),
		"verified", sum.Verified,
		"tampered", sum.Tampered,
		"missing", sum.Missing,
		"errors", sum.Errors,
	)
	return sum, nil
}

// checkRecord applies one verification attempt to rec, mutating its
// status, lastCheckedAt and checkCount in place. The caller owns
// persisting the record. Safe to run concurrently for distinct records.
func (s *Service) checkRecord(rec *model.Record) *VerificationResult {
	now := s.clock.Now()
	rec.LastCheckedAt = now
	rec.CheckCount++

	res := &VerificationResult{
		Identity:       rec.Identity,
		ExpectedDigest: rec.Digest,
		CheckedAt:      now,
		CheckCount:     rec.CheckCount,
	}

	f, err := s.fsmgr.Open(rec.Identity)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			rec.Status = model.StatusMissing
			res.Status = model.StatusMissing
			s.logger.Warn("tracked file missing", "identity", rec.Identity)
			return res
		}
		// Unreadable for another reason: the status must not change.
		res.Status = rec.Status
		res.Err = fmt.Errorf("%w: %s: %v", ErrVerifyIO, rec.Identity, err)
		s.logger.Error("verify read failed", "identity", rec.Identity, "error", err)
		return res
	}
	defer f.Close()

	current, _, err := s.digester.Sum(f)
	if err != nil {
		res.Status = rec.Status
		res.Err = fmt.Errorf("%w: %s: %v", ErrVerifyIO, rec.Identity, err)
		s.logger.Error("verify read failed", "identity", rec.Identity, "error", err)
		return res
	}
	res.CurrentDigest = current

	if current == rec.Digest {
		rec.Status = model.StatusVerified
	} else {
		rec.Status = model.StatusTampered
		s.logger.Warn("tampering detected",
			"identity", rec.Identity,
			"expected", rec.Digest,
			"current", current,
		)
	}
	res.Status = rec.Status
	return res
}
