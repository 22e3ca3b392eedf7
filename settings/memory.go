package settings

import (
	"sort"
	"sync"
)

type memoryStore struct {
	data   map[string]string
	closed bool
	lock   sync.RWMutex
}

// NewMemory returns a Store that keeps the values only in memory.
func NewMemory() Store {
	return &memoryStore{
		data: map[string]string{},
	}
}

func (s *memoryStore) Get(key string) (string, bool, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	if s.closed {
		return "", false, ErrClosed
	}

	value, ok := s.data[key]

	return value, ok, nil
}

func (s *memoryStore) Set(key, value string) error {
	return s.SetMany(map[string]string{key: value})
}

func (s *memoryStore) SetMany(values map[string]string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.closed {
		return ErrClosed
	}

	for k, v := range values {
		s.data[k] = v
	}

	return nil
}

func (s *memoryStore) Delete(key string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.closed {
		return ErrClosed
	}

	delete(s.data, key)

	return nil
}

func (s *memoryStore) Keys() ([]string, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	if s.closed {
		return nil, ErrClosed
	}

	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys, nil
}

func (s *memoryStore) Close() error {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.closed = true

	return nil
}
