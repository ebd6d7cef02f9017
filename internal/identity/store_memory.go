package identity

import (
	"context"
	"sync"

	"openid-gateway/pkg/platform/sentinel"
)

// InMemoryStore is a map-backed user directory for development and tests.
type InMemoryStore struct {
	mu    sync.RWMutex
	users map[string]Principal
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{users: make(map[string]Principal)}
}

// Put registers a principal under its login name, replacing any previous
// record.
func (s *InMemoryStore) Put(p Principal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[p.Login] = p
}

func (s *InMemoryStore) FindByLogin(_ context.Context, login string) (*Principal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.users[login]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := p
	return &copied, nil
}
