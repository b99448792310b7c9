package kvstore

import (
	"bytes"
	"context"
	"sync"

	"github.com/ruteri/project-nft-registry/interfaces"
)

var _ interfaces.KVStore = (*MemoryStore)(nil)

// MemoryStore keeps state in a map. Used for tests and ephemeral deployments.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (s *MemoryStore) Get(_ context.Context, key []byte) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.data[string(key)]
	if !ok {
		return nil, interfaces.ErrKeyNotFound
	}
	return bytes.Clone(v), nil
}

func (s *MemoryStore) Has(_ context.Context, key []byte) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.data[string(key)]
	return ok, nil
}

func (s *MemoryStore) Commit(ctx context.Context, changes []interfaces.KVChange) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range changes {
		if c.Delete {
			delete(s.data, string(c.Key))
			continue
		}
		s.data[string(c.Key)] = bytes.Clone(c.Value)
	}
	return nil
}

func (s *MemoryStore) Name() string {
	return "memory"
}

func (s *MemoryStore) Close() error {
	return nil
}
