package storage

import "sync"

// MemoryLocation is the storage location that selects a MemoryStore.
const MemoryLocation = ":memory:"

// MemoryStore keeps everything in a map. Nothing survives the process.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]string)}
}

func (s *MemoryStore) Init() error           { return nil }
func (s *MemoryStore) Load() error           { return nil }
func (s *MemoryStore) Close() error          { return nil }
func (s *MemoryStore) GetConfigPath() string { return MemoryLocation }

func (s *MemoryStore) Get(key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (s *MemoryStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}
