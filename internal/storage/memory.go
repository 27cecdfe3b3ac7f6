package storage

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/veridex/authenticity-analyzer/pkg/fault"
)

// MemoryStore keeps artifacts in process memory for tests.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string][]byte)}
}

func (s *MemoryStore) Get(ctx context.Context, ref string) ([]byte, error) {
	key := strings.TrimPrefix(ref, "memory://")

	s.mu.RLock()
	data, ok := s.objects[key]
	s.mu.RUnlock()

	if !ok {
		return nil, fault.New(fault.NotFound, stage, fmt.Errorf("artifact %s not found", ref))
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (s *MemoryStore) Put(ctx context.Context, key string, data []byte) (string, error) {
	stored := make([]byte, len(data))
	copy(stored, data)

	s.mu.Lock()
	s.objects[key] = stored
	s.mu.Unlock()

	return "memory://" + key, nil
}

var _ Store = (*MemoryStore)(nil)
