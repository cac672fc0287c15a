package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/rinatiamaev/salesFactoryNew/internal/queue"
)

// Errors returned by AsyncPublisher.Publish.
var (
	ErrEventDropped    = errors.New("event buffer full, event dropped")
	ErrPublisherClosed = errors.New("publisher closed")
)

// DeliverTimeout bounds one hand-off to the wrapped publisher.
const DeliverTimeout = 5 * time.Second

// AsyncPublisher queues events in a buffer drained by one goroutine, so a
// slow or unreachable broker never holds up a request.  When the buffer
// is full the event is dropped and Publish says so.
type AsyncPublisher struct {
	next   EventPublisher
	logger *log.Logger
	events chan queue.OrderEvent
	done   chan struct{}

	mu     sync.RWMutex
	closed bool
}

// NewAsyncPublisher starts the draining goroutine.  buffer < 1 is treated
// as 1 and a nil logger falls back to the standard logger.
func NewAsyncPublisher(next EventPublisher, buffer int, logger *log.Logger) *AsyncPublisher {
	if next == nil {
		panic("nil publisher passed to NewAsyncPublisher")
	}
	if buffer < 1 {
		buffer = 1
	}
	if logger == nil {
		logger = log.Default()
	}
	a := &AsyncPublisher{
		next:   next,
		logger: logger,
		events: make(chan queue.OrderEvent, buffer),
		done:   make(chan struct{}),
	}
	go a.run()
	return a
}

// Publish never blocks.  The request context is not used for delivery
// since it ends with the response.
func (a *AsyncPublisher) Publish(_ context.Context, ev queue.OrderEvent) error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return ErrPublisherClosed
	}
	select {
	case a.events <- ev:
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrEventDropped, ev.Kind)
	}
}

// Close stops accepting events and waits until the buffer is drained or
// ctx ends.
func (a *AsyncPublisher) Close(ctx context.Context) error {
	a.mu.Lock()
	if !a.closed {
		a.closed = true
		close(a.events)
	}
	a.mu.Unlock()

	select {
	case <-a.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("drain events: %w", ctx.Err())
	}
}

func (a *AsyncPublisher) run() {
	defer close(a.done)
	for ev := range a.events {
		ctx, cancel := context.WithTimeout(context.Background(), DeliverTimeout)
		if err := a.next.Publish(ctx, ev); err != nil {
			a.logger.Printf("events: deliver %s failed: %v", ev.Kind, err)
		}
		cancel()
	}
}
