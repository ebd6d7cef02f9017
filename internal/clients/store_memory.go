package clients

import (
	"context"
	"sync"
)

// InMemoryStore is a map-backed registry for development and tests.
type InMemoryStore struct {
	mu      sync.RWMutex
	clients map[string]Client
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{clients: make(map[string]Client)}
}

// Put registers a client, replacing any previous record with the same ID.
func (s *InMemoryStore) Put(c Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[c.ClientID] = c
}

func (s *InMemoryStore) ClientName(_ context.Context, clientID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.clients[clientID].Name, nil
}

func (s *InMemoryStore) RequiresConsent(_ context.Context, clientID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.clients[clientID].RequiresConsent, nil
}
