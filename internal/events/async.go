package events

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	// ErrQueueFull is returned when the delivery queue has no room left.
	ErrQueueFull = errors.New("event queue is full")
	// ErrPublisherClosed is returned by Publish after Close.
	ErrPublisherClosed = errors.New("event publisher is closed")
)

// AsyncPublisher queues events for a single background worker that delivers
// them, in order, to the wrapped publisher. Publish never waits on a broker.
type AsyncPublisher struct {
	next    Publisher
	timeout time.Duration
	onError func(Event, error)

	queue chan Event
	done  chan struct{}

	mu     sync.RWMutex
	closed bool
}

// NewAsyncPublisher starts the delivery worker. Each delivery gets its own
// timeout; onError, when set, is called from the worker for failed deliveries.
func NewAsyncPublisher(next Publisher, size int, timeout time.Duration, onError func(Event, error)) *AsyncPublisher {
	if size <= 0 {
		size = 1
	}
	p := &AsyncPublisher{
		next:    next,
		timeout: timeout,
		onError: onError,
		queue:   make(chan Event, size),
		done:    make(chan struct{}),
	}
	go p.run()
	return p
}

// Publish enqueues the event. It fails fast when the queue is full.
func (p *AsyncPublisher) Publish(_ context.Context, event Event) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPublisherClosed
	}
	select {
	case p.queue <- event:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close stops accepting events and waits for the queued ones to be delivered.
func (p *AsyncPublisher) Close() error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.queue)
	}
	p.mu.Unlock()
	<-p.done
	return nil
}

func (p *AsyncPublisher) run() {
	defer close(p.done)
	for event := range p.queue {
		p.deliver(event)
	}
}

func (p *AsyncPublisher) deliver(event Event) {
	ctx := context.Background()
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	if err := p.next.Publish(ctx, event); err != nil && p.onError != nil {
		p.onError(event, err)
	}
}
