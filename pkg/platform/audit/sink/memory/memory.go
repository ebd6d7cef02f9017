// Package memory keeps audit events in process memory. Used in tests and as
// the fallback when no broker is configured.
package memory

import (
	"context"
	"sync"

	"openid-gateway/pkg/platform/audit"
)

type Sink struct {
	mu     sync.RWMutex
	events []audit.Event
}

func NewSink() *Sink {
	return &Sink{}
}

func (s *Sink) Write(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

// Events returns a snapshot of everything written so far.
func (s *Sink) Events() []audit.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]audit.Event(nil), s.events...)
}

func (s *Sink) Close() error {
	return nil
}
