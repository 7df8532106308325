package fic

import "io"

// Digester is the external digest provider contract. Implementations
// must be deterministic and produce a fixed-length lowercase hex string.
// The engine never hashes bytes itself; it streams them through Sum so
// large files are never held in memory whole.
type Digester interface {
	// Algorithm returns the name stored alongside records, e.g. "sha256".
	Algorithm() string

	// Sum consumes r and returns the hex digest and the number of bytes read.
	Sum(r io.Reader) (digest string, n int64, err error)
}
