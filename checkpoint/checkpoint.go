// Package checkpoint fingerprints stored entries before a run mutates the
// store, so the run can prove afterwards that it left them untouched.
package checkpoint

import (
	"crypto/sha256"
	"sort"
	"sync"
)

// Fingerprint is the SHA-256 of an entry's bytes.
type Fingerprint [sha256.Size]byte

// Violation describes a tracked entry that changed during the run.
type Violation struct {
	Key    string `json:"key"`
	Reason string `json:"reason"` // "modified" or "missing"
}

// Guard records the original content of entries that must not change.
type Guard struct {
	mu   sync.RWMutex
	sums map[string]Fingerprint
}

// NewGuard creates a new empty guard.
func NewGuard() *Guard {
	return &Guard{
		sums: make(map[string]Fingerprint),
	}
}

// Track records the fingerprint of data under key.
// Only the first call per key is recorded (preserving the true original).
func (g *Guard) Track(key string, data []byte) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.sums[key]; exists {
		return
	}
	g.sums[key] = sha256.Sum256(data)
}

// Release stops tracking key, for entries the run removes on purpose.
func (g *Guard) Release(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.sums, key)
}

// Verify compares every tracked entry against its current content, as
// returned by lookup. Violations are sorted by key.
func (g *Guard) Verify(lookup func(key string) ([]byte, bool)) []Violation {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var out []Violation
	for key, sum := range g.sums {
		data, ok := lookup(key)
		switch {
		case !ok:
			out = append(out, Violation{Key: key, Reason: "missing"})
		case sha256.Sum256(data) != sum:
			out = append(out, Violation{Key: key, Reason: "modified"})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Len returns the number of tracked entries.
func (g *Guard) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.sums)
}

// Keys returns the tracked keys in sorted order.
func (g *Guard) Keys() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	keys := make([]string, 0, len(g.sums))
	for k := range g.sums {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
