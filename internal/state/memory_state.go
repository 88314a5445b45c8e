package state

import (
	"context"
	"sync"

	"github.com/auto-dns/ddns-sync/internal/domain"
)

// MemoryStore keeps history in process memory. It backs tests and runs that
// must not touch disk.
type MemoryStore struct {
	mu      sync.RWMutex
	history domain.AddressPair
	saves   int
}

func NewMemoryStore(initial domain.AddressPair) *MemoryStore {
	return &MemoryStore{history: initial}
}

func (s *MemoryStore) Load(ctx context.Context) (domain.AddressPair, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.history, nil
}

func (s *MemoryStore) Save(ctx context.Context, h domain.AddressPair) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = h
	s.saves++
	return nil
}

// Saves returns how many times Save was called.
func (s *MemoryStore) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}

func (s *MemoryStore) Close() error { return nil }
