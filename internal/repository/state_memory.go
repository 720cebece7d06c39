package repository

import (
	"context"
	"sync"
)

// StateMemory is an in-process store for local runs and tests.
type StateMemory struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

func NewStateMemory() *StateMemory {
	return &StateMemory{blobs: map[string][]byte{}}
}

func (s *StateMemory) Load(_ context.Context, namespace string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	blob, ok := s.blobs[namespace]
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(blob))
	copy(out, blob)
	return out, nil
}

func (s *StateMemory) Save(_ context.Context, namespace string, blob []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]byte, len(blob))
	copy(stored, blob)
	s.blobs[namespace] = stored
	return nil
}
