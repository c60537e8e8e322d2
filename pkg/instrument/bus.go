// Package instrument is the render-instrumentation channel: a publish
// point debug tooling subscribes to for "template rendered" events. The
// bus only fires for template handles constructed with debug enabled, so
// the hot path pays nothing when introspection is off.
package instrument

import (
	"sort"
	"sync"
)

// LayeredContext exposes a flat render context in the layered shape
// introspection tooling expects. The bridge assembles a single flat
// mapping per render; tooling written against stacked contexts reads it
// through Layers.
type LayeredContext map[string]any

// Layers returns the context as a single-layer stack.
func (c LayeredContext) Layers() []map[string]any {
	return []map[string]any{c}
}

// Event describes one rendered template. Sender and Template are the
// template handle that produced the output; Context is the compatibility
// view of the context it rendered with.
type Event struct {
	Sender   any
	Template any
	Context  LayeredContext
}

// Bus fans Events out to subscribers synchronously. Publishing is
// fire-and-forget: no return value is consumed and subscribers must not
// affect rendering.
type Bus struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]func(Event)
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[int]func(Event))}
}

// Subscribe registers fn for every published event. The returned cancel
// func removes the subscription.
func (b *Bus) Subscribe(fn func(Event)) (cancel func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.subs[id] = fn

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs, id)
	}
}

// Publish delivers ev to every subscriber in registration order.
func (b *Bus) Publish(ev Event) {
	b.mu.Lock()
	ids := make([]int, 0, len(b.subs))
	for id := range b.subs {
		ids = append(ids, id)
	}
	// map iteration order is random; deliver in subscription order
	sort.Ints(ids)
	subs := make([]func(Event), 0, len(ids))
	for _, id := range ids {
		subs = append(subs, b.subs[id])
	}
	b.mu.Unlock()

	for _, fn := range subs {
		fn(ev)
	}
}
