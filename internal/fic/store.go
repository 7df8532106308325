package fic

import (
	"time"

	"fic-go/internal/model"
)

// RecordStore provides indexed access to integrity records and whole-store
// replace/merge. Implementations must make ReplaceAll and MergeAll atomic:
// either every record lands or the store is left as it was.
type RecordStore interface {
	// Get returns the record for an identity, or nil if it is not tracked.
	Get(identity string) (*model.Record, error)

	// Put inserts the record, replacing any existing record with the
	// same identity.
	Put(record *model.Record) error

	// Delete removes a record. Returns false if the identity was not tracked.
	Delete(identity string) (bool, error)

	// List returns all records in identity order. The order is stable
	// across calls and across store backends.
	List() ([]*model.Record, error)

	// ReplaceAll discards every existing record and installs the given
	// set in a single transaction.
	ReplaceAll(records []*model.Record) error

	// MergeAll upserts the given records in a single transaction.
	// Existing identities are overwritten; identities not named are kept.
	MergeAll(records []*model.Record) error

	// CheckOperation history

	// CreateOperation records the start of a mutating CLI invocation.
	CreateOperation(op *model.CheckOperation) error

	// FinishOperation marks an operation finished with the given status.
	FinishOperation(id string, finishedAt time.Time, status string) error

	// ListOperations returns the most recent operations, newest first.
	// A limit <= 0 returns everything.
	ListOperations(limit int) ([]*model.CheckOperation, error)

	// Close closes the underlying storage.
	Close() error
}
