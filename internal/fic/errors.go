package fic

import "errors"

// Sentinel error kinds surfaced by the facade. Callers test them with
// errors.Is; the wrapped message carries the identity or destination.
var (
	// ErrNotTracked is returned by verify/remove when the identity has no record.
	ErrNotTracked = errors.New("not tracked")

	// ErrFileUnreadable is returned by add when the source content cannot be read.
	ErrFileUnreadable = errors.New("file unreadable")

	// ErrVerifyIO is returned when a verification read fails for a reason
	// other than the file not existing. Distinct from StatusMissing: the
	// record's status is left unchanged, but the attempt still counts.
	ErrVerifyIO = errors.New("verify read failed")

	// ErrCorruptDatabase is returned when a persisted store or archive
	// cannot be parsed into the expected schema.
	ErrCorruptDatabase = errors.New("corrupt integrity database")

	// ErrPersistFailure is returned when the store or an export
	// destination cannot be written completely.
	ErrPersistFailure = errors.New("persist failed")
)
