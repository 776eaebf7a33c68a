// Package sim implements the simulated market data layer: a seedable
// opportunity generator, the single-writer market state advanced by a
// periodic tick, and a fan-out broadcaster for price updates.
package sim

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/lucasharte/arbot/internal/domain"
)

// Subscriber receives one price update per published event. Subscribers are
// expected to be fast and non-blocking; a returned error (or panic) is
// logged and never interrupts delivery to the remaining subscribers.
type Subscriber func(domain.PriceUpdate) error

// Subscription is the handle returned by Subscribe, used to unsubscribe.
type Subscription struct {
	id uint64
}

type subscriberEntry struct {
	id uint64
	fn Subscriber
}

// Broadcaster fans price updates out to registered subscribers
// synchronously, in registration order, with per-subscriber fault
// isolation.
type Broadcaster struct {
	mu     sync.RWMutex
	nextID uint64
	subs   []subscriberEntry
	logger *slog.Logger
}

// NewBroadcaster creates an empty Broadcaster.
func NewBroadcaster(logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		logger: logger.With(slog.String("component", "broadcaster")),
	}
}

// Subscribe appends fn to the subscriber list. No deduplication; the same
// function may be registered more than once.
func (b *Broadcaster) Subscribe(fn Subscriber) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	sub := Subscription{id: b.nextID}
	b.subs = append(b.subs, subscriberEntry{id: sub.id, fn: fn})
	return sub
}

// Unsubscribe removes the subscriber identified by sub. The relative order
// of the remaining subscribers is preserved. Unknown handles are ignored.
func (b *Broadcaster) Unsubscribe(sub Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, e := range b.subs {
		if e.id == sub.id {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			return
		}
	}
}

// Len reports the number of registered subscribers.
func (b *Broadcaster) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Publish invokes every registered subscriber synchronously, in
// registration order. A subscriber that returns an error or panics does not
// prevent the remaining subscribers from being invoked; the failure is
// logged and never propagated to the caller.
func (b *Broadcaster) Publish(update domain.PriceUpdate) {
	b.mu.RLock()
	subs := make([]subscriberEntry, len(b.subs))
	copy(subs, b.subs)
	b.mu.RUnlock()

	for _, e := range subs {
		b.invoke(e, update)
	}
}

func (b *Broadcaster) invoke(e subscriberEntry, update domain.PriceUpdate) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("subscriber panicked",
				slog.Uint64("subscriber_id", e.id),
				slog.String("symbol", update.Symbol),
				slog.String("panic", fmt.Sprint(r)),
			)
		}
	}()

	if err := e.fn(update); err != nil {
		b.logger.Warn("subscriber failed",
			slog.Uint64("subscriber_id", e.id),
			slog.String("symbol", update.Symbol),
			slog.String("error", err.Error()),
		)
	}
}
