// Package publisher fronts an audit store with optional async buffering.
package publisher

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	audit "smartbin/pkg/platform/audit"
	"smartbin/pkg/platform/audit/worker"
)

// Publisher stamps and forwards audit events to a store. In async mode events
// go through a bounded buffer drained by a worker; a full buffer drops the
// event rather than blocking the caller.
type Publisher struct {
	store  audit.Store
	logger *slog.Logger
	clock  func() time.Time

	bufferSize int
	inbox      chan audit.Event
	wg         sync.WaitGroup
	closeOnce  sync.Once
	cancel     context.CancelFunc
}

type Option func(*Publisher)

// WithAsyncBuffer enables async mode with a buffer of size n.
func WithAsyncBuffer(n int) Option {
	return func(p *Publisher) {
		p.bufferSize = n
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func WithClock(clock func() time.Time) Option {
	return func(p *Publisher) {
		if clock != nil {
			p.clock = clock
		}
	}
}

func NewPublisher(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{store: store, clock: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	if p.bufferSize > 0 {
		p.inbox = make(chan audit.Event, p.bufferSize)
		ctx, cancel := context.WithCancel(context.Background())
		p.cancel = cancel
		w := worker.NewWorker(p.store, p.inbox, p.logger)
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			_ = w.Run(ctx)
		}()
	}
	return p
}

// Emit records an event. In sync mode the store error is returned.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = p.clock()
	}
	if event.Category == "" {
		event.Category = audit.AuditEvent(event.Action).Category()
	}

	if p.inbox == nil {
		return p.store.Append(ctx, event)
	}

	select {
	case p.inbox <- event:
	default:
		if p.logger != nil {
			p.logger.WarnContext(ctx, "audit buffer full, dropping event",
				"action", event.Action,
				"user_id", event.UserID,
			)
		}
	}
	return nil
}

// Close drains buffered events and stops the worker.
func (p *Publisher) Close() error {
	p.closeOnce.Do(func() {
		if p.inbox != nil {
			close(p.inbox)
			p.wg.Wait()
			p.cancel()
		}
	})
	return nil
}
