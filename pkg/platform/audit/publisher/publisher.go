// Package publisher delivers audit events to an audit.Store, either inline or
// through a bounded in-memory queue drained by one background worker.
package publisher

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	dErrors "zkid/pkg/domain-errors"
	audit "zkid/pkg/platform/audit"
)

const appendTimeout = 5 * time.Second

type Option func(*Publisher)

// WithBuffer queues up to size events and persists them in the background.
// When the queue is full Emit fails fast instead of blocking the request.
func WithBuffer(size int) Option {
	return func(p *Publisher) {
		if size > 0 {
			p.queue = make(chan audit.Event, size)
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) { p.logger = logger }
}

// Publisher implements audit.Emitter.
type Publisher struct {
	store  audit.Store
	logger *slog.Logger
	queue  chan audit.Event

	mu      sync.RWMutex
	closed  bool
	wg      sync.WaitGroup
	dropped atomic.Uint64
}

func New(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	if p.queue != nil {
		p.wg.Go(p.drain)
	}
	return p
}

// Emit stamps the event with the current time if unset and hands it to the
// store. In buffered mode a nil return only means the event was queued.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if p.queue == nil {
		return p.store.Append(ctx, event)
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return dErrors.New(dErrors.CodeInternal, "audit publisher closed")
	}
	select {
	case p.queue <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		p.dropped.Add(1)
		p.logger.WarnContext(ctx, "audit queue full, event dropped",
			"action", event.Action,
			"subject", event.Subject,
		)
		return dErrors.New(dErrors.CodeInternal, "audit queue full")
	}
}

func (p *Publisher) drain() {
	for event := range p.queue {
		ctx, cancel := context.WithTimeout(context.Background(), appendTimeout)
		if err := p.store.Append(ctx, event); err != nil {
			p.logger.Error("persist audit event",
				"error", err,
				"action", event.Action,
				"subject", event.Subject,
				"request_id", event.RequestID,
			)
		}
		cancel()
	}
}

// Dropped counts events rejected because the queue was full.
func (p *Publisher) Dropped() uint64 { return p.dropped.Load() }

// Close stops accepting events and waits for queued ones to be persisted.
func (p *Publisher) Close() {
	if p.queue == nil {
		return
	}
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()
	p.wg.Wait()
}
