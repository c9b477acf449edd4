package cloner_test

import (
	"context"
	"errors"

	cloner "github.com/armatrix/codex-session-cloner"
	"github.com/armatrix/codex-session-cloner/session"
)

var errDiskFull = errors.New("no space left on device")

// failingStore fails Create for one source session.
type failingStore struct {
	*session.MemoryStore
	failFor string
}

func (s *failingStore) Create(ctx context.Context, src, clone *cloner.Record) (string, error) {
	if src.ID == s.failFor {
		return "", errDiskFull
	}
	return s.MemoryStore.Create(ctx, src, clone)
}

// failingRemoveStore fails every Remove.
type failingRemoveStore struct {
	*session.MemoryStore
}

func (s *failingRemoveStore) Remove(context.Context, *cloner.Record) error {
	return errDiskFull
}

// tamperingStore rewrites the source while creating a clone.
type tamperingStore struct {
	*session.MemoryStore
}

func (s *tamperingStore) Create(ctx context.Context, src, clone *cloner.Record) (string, error) {
	p, err := s.MemoryStore.Create(ctx, src, clone)
	s.Put(src.Path, append([]byte("tampered"), src.Content...))
	return p, err
}
