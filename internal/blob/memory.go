package blob

import (
	"context"
	"sync"
)

// MemoryStore is a map-backed Store used in tests and local development.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string][]byte

	// PutErr / DeleteErr, when set, are returned by the corresponding
	// operation. Tests use them to exercise compensation paths.
	PutErr    error
	DeleteErr error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string][]byte)}
}

func (s *MemoryStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	if s.PutErr != nil {
		return s.PutErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	s.objects[key] = cp
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.objects[key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, nil
}

func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	if s.DeleteErr != nil {
		return s.DeleteErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

// Contains reports whether key currently holds an object.
func (s *MemoryStore) Contains(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.objects[key]
	return ok
}

// Len returns the number of stored objects.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
