// Package event provides a minimal typed publish/subscribe bus.
//
// Pipeline state changes, cache restore notifications and HDR mode changes
// all flow through Bus values owned by their respective components. Every
// Subscribe returns an explicit Subscription handle; handles can be pooled
// in a Group so a view or test harness can detach everything it wired up
// in one call.
package event

import "sync"

// Bus is a typed publish/subscribe channel.
//
// Bus is safe for concurrent use. Handlers run synchronously on the
// publishing goroutine, in subscription order.
type Bus[T any] struct {
	mu     sync.Mutex
	nextID uint64
	order  []uint64
	subs   map[uint64]func(T)
}

// NewBus creates an empty bus.
func NewBus[T any]() *Bus[T] {
	return &Bus[T]{subs: make(map[uint64]func(T))}
}

// Subscribe registers a handler and returns its subscription handle.
// A nil handler returns an inert, already-closed handle.
func (b *Bus[T]) Subscribe(fn func(T)) *Subscription {
	if fn == nil {
		return &Subscription{}
	}

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = fn
	b.order = append(b.order, id)
	b.mu.Unlock()

	return &Subscription{cancel: func() { b.unsubscribe(id) }}
}

// Publish invokes every live handler with v, in subscription order.
func (b *Bus[T]) Publish(v T) {
	b.mu.Lock()
	fns := make([]func(T), 0, len(b.order))
	for _, id := range b.order {
		if fn, ok := b.subs[id]; ok {
			fns = append(fns, fn)
		}
	}
	b.mu.Unlock()

	// Handlers run outside the lock so they may subscribe/unsubscribe.
	for _, fn := range fns {
		fn(v)
	}
}

// Len returns the number of live subscriptions.
func (b *Bus[T]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

func (b *Bus[T]) unsubscribe(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.subs, id)
	for i, oid := range b.order {
		if oid == id {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
}

// Subscription is a handle to one registered handler.
type Subscription struct {
	once   sync.Once
	cancel func()
}

// Close detaches the handler. Close is idempotent.
func (s *Subscription) Close() {
	s.once.Do(func() {
		if s.cancel != nil {
			s.cancel()
		}
	})
}

// Group collects subscriptions for bulk disposal.
//
// The zero value is ready to use. Group is safe for concurrent use.
type Group struct {
	mu   sync.Mutex
	subs []*Subscription
}

// Add registers a subscription with the group and returns it unchanged,
// so wiring reads as g.Add(bus.Subscribe(fn)).
func (g *Group) Add(s *Subscription) *Subscription {
	if s == nil {
		return nil
	}
	g.mu.Lock()
	g.subs = append(g.subs, s)
	g.mu.Unlock()
	return s
}

// Close detaches every subscription in the group. Close is idempotent.
func (g *Group) Close() {
	g.mu.Lock()
	subs := g.subs
	g.subs = nil
	g.mu.Unlock()

	for _, s := range subs {
		s.Close()
	}
}

// Len returns the number of subscriptions held by the group.
func (g *Group) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.subs)
}
