package broadcast

import (
	"log/slog"
	"sync"

	"github.com/connectsphere/clientkit/pkg/logger"
)

// Handler receives published values. Handlers are invoked synchronously in
// the publishing goroutine.
type Handler[T any] func(T)

// Publisher fans a value out to every subscribed handler. A panicking
// handler is recovered and logged so one failing subscriber can never
// prevent the rest from being notified.
//
// All methods are safe for concurrent use.
type Publisher[T any] struct {
	mu       sync.RWMutex
	handlers map[uint64]Handler[T]
	nextID   uint64
	closed   bool
	logger   *slog.Logger
}

// PublisherOption configures a Publisher.
type PublisherOption[T any] func(*Publisher[T])

// WithLogger sets the logger used to report recovered handler panics.
func WithLogger[T any](log *slog.Logger) PublisherOption[T] {
	return func(p *Publisher[T]) {
		if log != nil {
			p.logger = log
		}
	}
}

// NewPublisher creates an empty publisher.
func NewPublisher[T any](opts ...PublisherOption[T]) *Publisher[T] {
	p := &Publisher[T]{
		handlers: make(map[uint64]Handler[T]),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Subscribe registers a handler and returns a function that removes it.
// The unsubscribe function is idempotent. Subscribing to a closed publisher
// returns a no-op unsubscribe and the handler is never invoked.
func (p *Publisher[T]) Subscribe(h Handler[T]) func() {
	if h == nil {
		return func() {}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return func() {}
	}

	id := p.nextID
	p.nextID++
	p.handlers[id] = h

	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.handlers, id)
	}
}

// Publish delivers v to all current subscribers synchronously. Handler
// invocation order is unspecified. Publish after Close is a no-op.
func (p *Publisher[T]) Publish(v T) {
	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return
	}
	// Snapshot so handlers may subscribe/unsubscribe without deadlocking.
	handlers := make([]Handler[T], 0, len(p.handlers))
	for _, h := range p.handlers {
		handlers = append(handlers, h)
	}
	p.mu.RUnlock()

	for _, h := range handlers {
		p.invoke(h, v)
	}
}

// invoke runs a single handler with panic isolation.
func (p *Publisher[T]) invoke(h Handler[T], v T) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("broadcast handler panicked",
				logger.Component("broadcast"),
				slog.Any("panic", r),
			)
		}
	}()
	h(v)
}

// Len returns the number of active subscribers.
func (p *Publisher[T]) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.handlers)
}

// Close removes all subscribers and makes further Publish and Subscribe
// calls no-ops. Close is idempotent.
func (p *Publisher[T]) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.closed = true
	clear(p.handlers)
}
