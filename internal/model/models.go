package model

import "time"

// Status is the integrity state of a tracked file, derived from the
// last verification run. It is never set directly by callers.
type Status string

const (
	// StatusVerified means the last computed digest matched the stored one.
	StatusVerified Status = "verified"
	// StatusTampered means the last computed digest differed from the stored one.
	StatusTampered Status = "tampered"
	// StatusMissing means the tracked file no longer exists on disk.
	StatusMissing Status = "missing"
	// StatusUnknown means the queried identity has no record. It is a
	// per-lookup answer, never persisted: records are Verified on creation.
	StatusUnknown Status = "unknown"
)

// ParseStatus converts a stored string into a Status.
// Unrecognized values map to StatusUnknown so a damaged row cannot
// smuggle an invalid state into the state machine.
func ParseStatus(s string) Status {
	switch Status(s) {
	case StatusVerified, StatusTampered, StatusMissing:
		return Status(s)
	default:
		return StatusUnknown
	}
}

// Record is the integrity record for one tracked file.
// Identity is the absolute path of the file and the unique key.
type Record struct {
	Identity      string    // Absolute path; unique, immutable
	Digest        string    // Last known-good digest, lowercase hex
	Algorithm     string    // Digest algorithm name, e.g. "sha256"
	SizeBytes     int64     // Size when the digest was taken
	AddedAt       time.Time // Set once at creation (or re-baseline)
	LastCheckedAt time.Time // Updated on every verification attempt
	Status        Status
	Description   string // Optional free text
	CheckCount    int64  // Verification attempts, including failed ones
}

// Clone returns a copy of the record. Stores hand out clones so callers
// cannot mutate indexed state behind the store's back.
func (r *Record) Clone() *Record {
	c := *r
	return &c
}

// CheckOperation is one CLI invocation that mutated the database.
// Non-mutating commands (list, export) are not recorded.
type CheckOperation struct {
	ID         string // UUID
	Operation  string // e.g. "Add", "VerifyAll", "Import"
	Parameters string
	StartedAt  time.Time
	FinishedAt time.Time
	Status     string // "success" or "error"
}
