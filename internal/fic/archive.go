package fic

import (
	"fmt"
	"io"
)

// ArchiveStore moves serialized integrity archives to and from export
// destinations. Implementations route on the destination reference: a
// plain path is a local file, "s3://bucket/key" is an object upload.
// Local writes must be atomic (temp file + rename) so a reader never
// observes a half-written archive.
type ArchiveStore interface {
	// Put streams an archive to the destination.
	Put(ref string, r io.Reader) error

	// Get streams an archive from the source into w.
	Get(ref string, w io.Writer) error
}

// Encryptor encrypts exported archives. The private key stays wrapped
// until Unlock is called with the user's passphrase.
type Encryptor interface {
	// Setup generates and stores a key pair, wrapping the private key
	// with the given passphrase.
	Setup(passphrase string) error

	// Encrypt reads plaintext from r and writes ciphertext to w.
	Encrypt(r io.Reader, w io.Writer) error

	// Unlock decrypts the private key with the passphrase and returns a
	// context that can decrypt archives.
	Unlock(passphrase string) (DecryptionContext, error)

	// IsConfigured returns true if key material is in place.
	IsConfigured() bool
}

// DecryptionContext holds an unlocked identity for decrypting archives.
type DecryptionContext interface {
	Decrypt(r io.Reader, w io.Writer) error
}

// MergeStrategy selects how an imported archive combines with the store.
type MergeStrategy string

const (
	// StrategyReplace discards the current store; the archive wholly supersedes it.
	StrategyReplace MergeStrategy = "replace"

	// StrategyMerge upserts archive records into the current store.
	// The archive wins on conflict; records only in the store are kept.
	StrategyMerge MergeStrategy = "merge"
)

// ParseMergeStrategy validates a strategy name from the CLI.
func ParseMergeStrategy(s string) (MergeStrategy, error) {
	switch MergeStrategy(s) {
	case StrategyReplace, StrategyMerge:
		return MergeStrategy(s), nil
	default:
		return "", fmt.Errorf("unknown import strategy %q (want replace or merge)", s)
	}
}
