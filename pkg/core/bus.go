package core

import (
	"log/slog"
	"sync"
)

// Handler receives a bus event.
type Handler func(Event)

// subscription groups the handlers a single key registered for one kind.
type subscription struct {
	key      string
	handlers []Handler
}

// Bus is a synchronous in-process publish/subscribe registry.
//
// Handlers are grouped by subscriber key (usually the lifetime of one UI
// component) so they can be removed together with Unsubscribe. Emit calls
// handlers on the caller's goroutine, in registration order within a key and
// in first-subscription order across keys.
type Bus struct {
	mu     sync.RWMutex
	subs   map[EventKind][]*subscription
	logger *slog.Logger
}

// NewBus creates an empty bus. A nil logger discards warnings.
func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Bus{
		subs:   make(map[EventKind][]*subscription),
		logger: logger,
	}
}

// Subscribe registers h for kind under key.
func (b *Bus) Subscribe(kind EventKind, key string, h Handler) {
	if h == nil {
		return
	}
	if !kind.Valid() {
		b.logger.Warn("subscribing to an event kind that does not exist", "kind", kind, "key", key)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for _, s := range b.subs[kind] {
		if s.key == key {
			s.handlers = append(s.handlers, h)
			return
		}
	}
	b.subs[kind] = append(b.subs[kind], &subscription{key: key, handlers: []Handler{h}})
}

// Unsubscribe removes every handler registered under key, across all kinds.
// Unknown keys are ignored.
func (b *Bus) Unsubscribe(key string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for kind, subs := range b.subs {
		kept := subs[:0]
		for _, s := range subs {
			if s.key != key {
				kept = append(kept, s)
			}
		}
		if len(kept) == 0 {
			delete(b.subs, kind)
			continue
		}
		b.subs[kind] = kept
	}
}

// Emit delivers e to every handler subscribed to its kind.
// The lock is not held while handlers run, so they may subscribe or
// unsubscribe; such changes apply from the next Emit.
func (b *Bus) Emit(e Event) {
	if e == nil {
		return
	}

	b.mu.RLock()
	subs := b.subs[e.Kind()]
	var handlers []Handler
	for _, s := range subs {
		handlers = append(handlers, s.handlers...)
	}
	b.mu.RUnlock()

	b.logger.Debug("emit", "event", e.String(), "handlers", len(handlers))
	for _, h := range handlers {
		h(e)
	}
}

// Clear drops every registration.
func (b *Bus) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = make(map[EventKind][]*subscription)
}

// Keys returns the subscriber keys registered for kind, in delivery order.
func (b *Bus) Keys(kind EventKind) []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	keys := make([]string, 0, len(b.subs[kind]))
	for _, s := range b.subs[kind] {
		keys = append(keys, s.key)
	}
	return keys
}

// Listen subscribes a handler typed on the concrete event payload.
//
//	core.Listen(bus, "tree", func(e core.AuthChanged) { ... })
func Listen[E Event](b *Bus, key string, fn func(E)) {
	var zero E
	b.Subscribe(zero.Kind(), key, func(e Event) {
		if v, ok := e.(E); ok {
			fn(v)
		}
	})
}

// Forward copies events of the given kinds onto ch under key. Sends never
// block the emitter: when ch is full the event is dropped and logged.
func (b *Bus) Forward(key string, ch chan<- Event, kinds ...EventKind) {
	for _, kind := range kinds {
		b.Subscribe(kind, key, func(e Event) {
			select {
			case ch <- e:
			default:
				b.logger.Warn("dropping event, consumer is not keeping up", "event", e.String(), "key", key)
			}
		})
	}
}
