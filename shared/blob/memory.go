package blob

import (
	"context"
	"sort"
	"strings"
	"sync"
)

var _ Store = (*MemStore)(nil)

type memObject struct {
	data        []byte
	contentType string
}

// MemStore is an in-memory Store, used in tests and as a reference
// implementation of the Store contract.
type MemStore struct {
	mu      sync.RWMutex
	objects map[string]memObject
}

func NewMemStore() *MemStore {
	return &MemStore{objects: make(map[string]memObject)}
}

func (s *MemStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := make([]byte, len(data))
	copy(cp, data)
	s.objects[key] = memObject{data: cp, contentType: contentType}
	return nil
}

func (s *MemStore) Get(ctx context.Context, key string) ([]byte, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	obj, ok := s.objects[key]
	if !ok {
		return nil, "", ErrNotFound
	}

	cp := make([]byte, len(obj.data))
	copy(cp, obj.data)
	return cp, obj.contentType, nil
}

func (s *MemStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.objects[key]; !ok {
		return ErrNotFound
	}
	delete(s.objects, key)
	return nil
}

func (s *MemStore) List(ctx context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var keys []string
	for k := range s.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}

	sort.Strings(keys)
	return keys, nil
}
