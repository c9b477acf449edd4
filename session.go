package cloner

import (
	"context"
	"time"
)

// Kind distinguishes originals from clones.
type Kind int

const (
	// KindOriginal is a session written by Codex itself.
	KindOriginal Kind = iota
	// KindClone is a session produced by this tool and carries lineage.
	KindClone
)

func (k Kind) String() string {
	if k == KindClone {
		return "clone"
	}
	return "original"
}

// Lineage is present only on clones and points back at the source session.
type Lineage struct {
	ClonedFrom       string `json:"cloned_from"`
	OriginalProvider string `json:"original_provider"`
	CloneTimestamp   string `json:"clone_timestamp"`
}

// Record is one session rollout as seen by the engine.
type Record struct {
	ID       string `json:"id"`
	Provider string `json:"model_provider"`

	// CreatedAt is the serialized creation timestamp, kept verbatim.
	CreatedAt string `json:"created_at"`

	// Content holds the raw bytes of the rollout. It is never interpreted
	// beyond the metadata line.
	Content []byte `json:"-"`

	Lineage *Lineage `json:"lineage,omitempty"`

	// Path is the storage identity used for writes and deletes.
	Path string `json:"path"`
}

// Kind reports whether r is an original or a clone.
func (r *Record) Kind() Kind {
	if r.Lineage != nil {
		return KindClone
	}
	return KindOriginal
}

// CloneFor builds the clone of r for provider. Content is shared with r and
// must be treated as read-only; stores rewrite only the metadata line.
func (r *Record) CloneFor(provider, newID string, now time.Time) *Record {
	return &Record{
		ID:        newID,
		Provider:  provider,
		CreatedAt: r.CreatedAt,
		Content:   r.Content,
		Lineage: &Lineage{
			ClonedFrom:       r.ID,
			OriginalProvider: r.Provider,
			CloneTimestamp:   now.Format(time.RFC3339Nano),
		},
	}
}

// ScanResult is the snapshot returned by a Store.
type ScanResult struct {
	Records  []*Record
	Failures []*RecordError
}

// Store defines the storage backend the engine reads from and writes to.
type Store interface {
	// Scan reads every session. Unparseable entries are reported in
	// ScanResult.Failures; only an unreadable root returns an error.
	Scan(ctx context.Context) (*ScanResult, error)

	// Create persists clone next to src and returns its storage path.
	// It must never overwrite an existing entry; a collision returns ErrExists.
	Create(ctx context.Context, src, clone *Record) (string, error)

	// Remove deletes the entry for r.
	Remove(ctx context.Context, r *Record) error

	// Read returns the raw bytes stored at path, or ErrNotFound.
	Read(ctx context.Context, path string) ([]byte, error)
}
