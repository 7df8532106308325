package testutil

import (
	"fmt"
	"sync"
	"time"
)

// StubClock is a manually advanced fic.Clock. Verification tests move
// it forward with Advance to observe lastCheckedAt updates without
// sleeping. Safe for the concurrent checks inside a verify-all batch.
type StubClock struct {
	mu      sync.Mutex
	current time.Time
}

// NewStubClock creates a StubClock pinned to t.
func NewStubClock(t time.Time) *StubClock {
	return &StubClock{current: t}
}

// FixedClock returns a StubClock pinned to an arbitrary baseline,
// 2025-03-09 08:00:00 UTC. Tests that care about a specific instant
// should use NewStubClock instead.
func FixedClock() *StubClock {
	return NewStubClock(time.Date(2025, 3, 9, 8, 0, 0, 0, time.UTC))
}

func (c *StubClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Advance moves the clock forward by d. Subsequent Now calls see the
// new time.
func (c *StubClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = c.current.Add(d)
}

// StubIDGenerator hands out deterministic snapshot and operation IDs
// ("fic-test-1", "fic-test-2", ...) in place of random UUIDs.
type StubIDGenerator struct {
	mu   sync.Mutex
	next int
}

func NewStubIDGenerator() *StubIDGenerator {
	return &StubIDGenerator{}
}

func (g *StubIDGenerator) New() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next++
	return fmt.Sprintf("fic-test-%d", g.next)
}
