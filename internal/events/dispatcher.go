// Package events is the in-process domain-event dispatcher spec.md §4.5
// describes: subscribers registered by concrete event type, invoked
// sequentially in registration order on the dispatching goroutine. No
// teacher file implements this directly; grounded on the same
// registration-map shape the teacher uses for its HTTP route tables
// (register-by-key, iterate-in-order), adapted to event subscription.
package events

import (
	"context"
	"sync"

	"github.com/corebank-platform/core/internal/domain/event"
	"github.com/corebank-platform/core/platform/mlog"
)

// Subscriber handles one event. Returning an error marks the attempt a
// failure; callers decide (via Publish vs PublishStrict) whether that error
// is swallowed or surfaced.
type Subscriber func(ctx context.Context, e event.Event) error

// Dispatcher routes events to the subscribers registered for their concrete
// Type(). It is safe for concurrent Subscribe/Publish calls.
type Dispatcher struct {
	mu          sync.RWMutex
	subscribers map[string][]Subscriber
	logger      mlog.Logger
}

// New returns an empty Dispatcher.
func New(logger mlog.Logger) *Dispatcher {
	return &Dispatcher{
		subscribers: make(map[string][]Subscriber),
		logger:      logger,
	}
}

// Subscribe registers sub for eventType, appended after any subscriber
// already registered for that type.
func (d *Dispatcher) Subscribe(eventType string, sub Subscriber) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.subscribers[eventType] = append(d.subscribers[eventType], sub)
}

func (d *Dispatcher) subscribersFor(eventType string) []Subscriber {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]Subscriber, len(d.subscribers[eventType]))
	copy(out, d.subscribers[eventType])

	return out
}

// Publish invokes every subscriber registered for e.Type(), in registration
// order, sequentially. A subscriber failure is logged and never surfaced —
// the command pipeline's DomainEvents stage uses this variant, because the
// event is already durably persisted in the outbox for the relay to retry
// (spec.md §4.5).
func (d *Dispatcher) Publish(ctx context.Context, e event.Event) {
	for _, sub := range d.subscribersFor(e.Type()) {
		if err := sub(ctx, e); err != nil {
			d.logger.Errorf("subscriber failed for event %s (id %s): %v", e.Type(), e.EventID(), err)
		}
	}
}

// PublishStrict is Publish's counterpart for the outbox relay: it still
// logs every failure, but additionally returns the first one so the relay
// can decide to retry the outbox row rather than mark it delivered.
func (d *Dispatcher) PublishStrict(ctx context.Context, e event.Event) error {
	var first error

	for _, sub := range d.subscribersFor(e.Type()) {
		if err := sub(ctx, e); err != nil {
			d.logger.Errorf("subscriber failed for event %s (id %s): %v", e.Type(), e.EventID(), err)

			if first == nil {
				first = err
			}
		}
	}

	return first
}
