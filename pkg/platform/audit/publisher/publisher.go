// Package publisher delivers audit events to a sink, synchronously by default
// or through a buffered worker when configured.
package publisher

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"openid-gateway/pkg/platform/audit"
)

// Sink receives audit events. Implementations must be safe for concurrent
// writes.
type Sink interface {
	Write(ctx context.Context, event audit.Event) error
	Close() error
}

// Publisher emits audit events. In async mode a full buffer drops the event
// rather than blocking the request path; the audit trail is best-effort, the
// request is not.
type Publisher struct {
	sink   Sink
	logger *slog.Logger

	buffer chan audit.Event
	wg     sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithAsyncBuffer switches the publisher to a buffered background worker.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		p.buffer = make(chan audit.Event, size)
	}
}

func NewPublisher(sink Sink, logger *slog.Logger, opts ...Option) *Publisher {
	p := &Publisher{sink: sink, logger: logger}
	for _, opt := range opts {
		opt(p)
	}
	if p.buffer != nil {
		p.wg.Add(1)
		go p.drain()
	}
	return p
}

// Emit records an event, stamping the timestamp when unset. After Close it
// drops the event with a warning instead of reaching the closed buffer.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		p.logger.Warn("audit publisher closed, dropping event", "action", string(event.Action))
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if p.buffer != nil {
		select {
		case p.buffer <- event:
		default:
			p.logger.Warn("audit buffer full, dropping event", "action", string(event.Action))
		}
		return
	}
	if err := p.sink.Write(ctx, event); err != nil {
		p.logger.ErrorContext(ctx, "audit sink write failed",
			"action", string(event.Action),
			"error", err,
		)
	}
}

func (p *Publisher) drain() {
	defer p.wg.Done()
	for event := range p.buffer {
		if err := p.sink.Write(context.Background(), event); err != nil {
			p.logger.Error("audit sink write failed",
				"action", string(event.Action),
				"error", err,
			)
		}
	}
}

// Close drains any buffered events and closes the sink. Idempotent; later
// Emit calls become no-ops.
func (p *Publisher) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	if p.buffer != nil {
		close(p.buffer)
		p.wg.Wait()
	}
	return p.sink.Close()
}
