// Package publisher hands audit events to an audit.Store, either inline or through
// a bounded queue drained by one background writer.
package publisher

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	dErrors "backupauth/pkg/domain-errors"
	audit "backupauth/pkg/platform/audit"
)

// ErrClosed is returned by Emit after Close.
var ErrClosed = errors.New("audit publisher closed")

const defaultAppendTimeout = 5 * time.Second

type Publisher struct {
	store         audit.Store
	logger        *slog.Logger
	metrics       *Metrics
	appendTimeout time.Duration

	mu     sync.RWMutex
	closed bool
	events chan audit.Event
	wg     sync.WaitGroup
}

type PublisherOption func(*Publisher)

// WithAsyncBuffer queues up to size events for the background writer. Emit never
// blocks on a full queue; the event is dropped and counted instead.
func WithAsyncBuffer(size int) PublisherOption {
	return func(p *Publisher) {
		if size > 0 {
			p.events = make(chan audit.Event, size)
		}
	}
}

func WithPublisherLogger(logger *slog.Logger) PublisherOption {
	return func(p *Publisher) {
		if logger != nil {
			p.logger = logger
		}
	}
}

func WithMetrics(m *Metrics) PublisherOption {
	return func(p *Publisher) {
		p.metrics = m
	}
}

// WithAppendTimeout bounds each background write.
func WithAppendTimeout(d time.Duration) PublisherOption {
	return func(p *Publisher) {
		if d > 0 {
			p.appendTimeout = d
		}
	}
}

func NewPublisher(store audit.Store, opts ...PublisherOption) *Publisher {
	p := &Publisher{
		store:         store,
		logger:        slog.Default(),
		appendTimeout: defaultAppendTimeout,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.events != nil {
		p.wg.Add(1)
		go p.drain()
	}
	return p
}

func (p *Publisher) drain() {
	defer p.wg.Done()
	for event := range p.events {
		ctx, cancel := context.WithTimeout(context.Background(), p.appendTimeout)
		err := p.store.Append(ctx, event)
		cancel()
		p.record(event, err)
		if err != nil {
			p.logger.Error("failed to persist audit event",
				"error", err,
				"action", event.Action,
				"account_id", event.AccountID.String(),
				"request_id", event.RequestID,
			)
		}
	}
}

// Emit stamps a missing timestamp and persists or enqueues the event.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}

	if p.events == nil {
		err := p.store.Append(ctx, event)
		p.record(event, err)
		return err
	}

	select {
	case p.events <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		if p.metrics != nil {
			p.metrics.dropped.WithLabelValues(event.Action).Inc()
		}
		p.logger.Warn("audit buffer full, event dropped",
			"action", event.Action,
			"account_id", event.AccountID.String(),
		)
		return dErrors.New(dErrors.CodeInternal, "audit buffer full")
	}
}

// Close stops accepting events and waits for queued ones to be written. It is safe
// to call more than once.
func (p *Publisher) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	if p.events != nil {
		close(p.events)
	}
	p.mu.Unlock()
	p.wg.Wait()
}

func (p *Publisher) record(event audit.Event, err error) {
	if p.metrics == nil {
		return
	}
	if err != nil {
		p.metrics.failed.WithLabelValues(event.Action).Inc()
		return
	}
	p.metrics.persisted.WithLabelValues(event.Action).Inc()
}
