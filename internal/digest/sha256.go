// Package digest provides the SHA-256 digest provider behind the
// fic.Digester contract.
package digest

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"

	"fic-go/internal/fic"
)

// SHA256 computes streaming SHA-256 digests. Content is copied through
// the hash, never buffered whole, so file size does not bound memory.
type SHA256 struct{}

// NewSHA256 returns the default digest provider.
func NewSHA256() SHA256 { return SHA256{} }

// Algorithm returns the algorithm name stored on records.
func (SHA256) Algorithm() string { return "sha256" }

// Sum consumes r and returns the lowercase hex digest and byte count.
func (SHA256) Sum(r io.Reader) (string, int64, error) {
	h := sha256.New()
	n, err := io.Copy(h, r)
	if err != nil {
		return "", 0, fmt.Errorf("hashing content: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), n, nil
}

// Compile-time check that SHA256 implements fic.Digester.
var _ fic.Digester = SHA256{}
