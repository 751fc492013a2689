// Package checkpoint provides CheckpointStore implementations for
// resumable hashing.
//
// MemoryStore and FileStore can be selected from configuration with
// FromConfig. The Redis and Postgres stores are separate modules,
// checkpoint/redis and checkpoint/postgres, so that their drivers are only
// pulled in by programs that use them. They are library-only: construct
// them with their New function and pass them to ripemd.NewSummer with
// ripemd.WithCheckpointStore.
package checkpoint

import (
	"context"
	"sync"

	"github.com/ineyio/ripemd"
)

// MemoryStore is an in-memory CheckpointStore. Checkpoints survive a
// cancelled Sum but not the process.
type MemoryStore struct {
	mu          sync.RWMutex
	checkpoints map[string]ripemd.Checkpoint
}

var _ ripemd.CheckpointStore = (*MemoryStore)(nil)

// NewMemoryStore creates a new in-memory checkpoint store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		checkpoints: make(map[string]ripemd.Checkpoint),
	}
}

// Save stores a copy of cp.
func (s *MemoryStore) Save(_ context.Context, cp ripemd.Checkpoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.checkpoints[cp.Name] = clone(cp)
	return nil
}

// Load returns the checkpoint saved under name.
func (s *MemoryStore) Load(_ context.Context, name string) (ripemd.Checkpoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cp, ok := s.checkpoints[name]
	if !ok {
		return ripemd.Checkpoint{}, ripemd.ErrCheckpointNotFound
	}
	return clone(cp), nil
}

func clone(cp ripemd.Checkpoint) ripemd.Checkpoint {
	cp.State = append([]byte(nil), cp.State...)
	cp.Source.Tail = append([]byte(nil), cp.Source.Tail...)
	return cp
}

// Delete removes the checkpoint saved under name.
func (s *MemoryStore) Delete(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.checkpoints, name)
	return nil
}

// Len returns the number of stored checkpoints.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.checkpoints)
}
