package consent

import (
	"context"
	"sync"
)

// InMemoryStore keeps granted decisions in a map for development and tests.
type InMemoryStore struct {
	mu      sync.RWMutex
	granted map[string]struct{}
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{granted: make(map[string]struct{})}
}

// Grant marks consent as already given for the pair. Exposed on the concrete
// store only; the DecisionStore interface stays read-only.
func (s *InMemoryStore) Grant(userID, clientID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.granted[key(userID, clientID)] = struct{}{}
}

// Revoke forgets a prior grant.
func (s *InMemoryStore) Revoke(userID, clientID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.granted, key(userID, clientID))
}

func (s *InMemoryStore) NeedsConsent(_ context.Context, userID, clientID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.granted[key(userID, clientID)]
	return !ok, nil
}

func key(userID, clientID string) string {
	return userID + "\x00" + clientID
}
