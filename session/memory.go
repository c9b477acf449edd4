package session

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"

	cloner "github.com/armatrix/codex-session-cloner"
	"github.com/armatrix/codex-session-cloner/internal/rollout"
)

// MemoryStore is an in-memory session store backed by a sync.RWMutex-protected
// map of slash-separated paths to rollout bytes. Bytes are copied on the way in
// and out to prevent external mutation.
type MemoryStore struct {
	mu    sync.RWMutex
	files map[string][]byte
}

var _ cloner.Store = (*MemoryStore)(nil)

// NewMemoryStore creates a new empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		files: make(map[string][]byte),
	}
}

// Put stores data at p, replacing anything already there. It is the seeding
// path for tests and has no equivalent on the engine side.
func (m *MemoryStore) Put(p string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[p] = clone(data)
}

// Get returns a copy of the bytes at p.
func (m *MemoryStore) Get(p string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.files[p]
	if !ok {
		return nil, false
	}
	return clone(data), true
}

// Paths returns every stored path in sorted order.
func (m *MemoryStore) Paths() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.files))
	for p := range m.files {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of stored entries.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.files)
}

// Scan decodes every entry ending in .jsonl.
func (m *MemoryStore) Scan(_ context.Context) (*cloner.ScanResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	paths := make([]string, 0, len(m.files))
	for p := range m.files {
		if strings.HasSuffix(p, ".jsonl") {
			paths = append(paths, p)
		}
	}
	sort.Strings(paths)

	result := &cloner.ScanResult{}
	for _, p := range paths {
		rec, err := rollout.Decode(p, clone(m.files[p]))
		if err != nil {
			var re *cloner.RecordError
			if !errors.As(err, &re) {
				re = cloner.NewParseError(p, err)
			}
			result.Failures = append(result.Failures, re)
			continue
		}
		result.Records = append(result.Records, rec)
	}
	return result, nil
}

// Create stores clone next to src using the same naming as FileStore.
func (m *MemoryStore) Create(_ context.Context, src, c *cloner.Record) (string, error) {
	data, err := rollout.Encode(src.Content, c)
	if err != nil {
		return "", err
	}
	p := path.Join(path.Dir(src.Path), rollout.CloneName(path.Base(src.Path), src.ID, c.ID))

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.files[p]; exists {
		return p, cloner.ErrExists
	}
	m.files[p] = data
	return p, nil
}

// Remove deletes the entry of r. Returns an error if not found.
func (m *MemoryStore) Remove(_ context.Context, r *cloner.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.files[r.Path]; !ok {
		return fmt.Errorf("%w: %s", cloner.ErrNotFound, r.Path)
	}
	delete(m.files, r.Path)
	return nil
}

// Read returns a copy of the bytes at p.
func (m *MemoryStore) Read(_ context.Context, p string) ([]byte, error) {
	data, ok := m.Get(p)
	if !ok {
		return nil, fmt.Errorf("%w: %s", cloner.ErrNotFound, p)
	}
	return data, nil
}

func clone(b []byte) []byte {
	return append([]byte(nil), b...)
}
