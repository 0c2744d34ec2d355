// Package service contains the shared plumbing of map instances.
package service

import (
	"sync"

	"github.com/paulmach/orb"
)

// Event kinds fired by the map engine and the browser viewport.
const (
	ZoomEnd = "zoomend"
	MoveEnd = "moveend"
	Resize  = "resize"
)

// Event is a viewport change reported by the client.
type Event struct {
	Kind   string    // ZoomEnd, MoveEnd or Resize
	Zoom   float64   // current zoom level
	Center orb.Point // current center, lon/lat
	Width  int       // viewport width in CSS pixels
	Height int       // viewport height in CSS pixels
}

// Handler receives events of the kind it subscribed to.
type Handler func(Event)

// EventBus is a synchronous fan-out of viewport events to listeners.
// Handlers run on the publishing goroutine in subscription order.
type EventBus struct {
	mu     sync.RWMutex
	nextID int
	subs   map[string][]subscription
}

type subscription struct {
	id int
	fn Handler
}

// NewEventBus creates a new event bus.
func NewEventBus() *EventBus {
	return &EventBus{subs: make(map[string][]subscription)}
}

// Subscribe registers fn for events of kind and returns the function that
// removes it. Calling release more than once is harmless.
func (b *EventBus) Subscribe(kind string, fn Handler) (release func()) {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs[kind] = append(b.subs[kind], subscription{id: id, fn: fn})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(kind, id) })
	}
}

// Publish delivers e to every listener of its kind.
func (b *EventBus) Publish(e Event) {
	b.mu.RLock()
	subs := append([]subscription(nil), b.subs[e.Kind]...)
	b.mu.RUnlock()

	for _, s := range subs {
		s.fn(e)
	}
}

// Len returns the number of registered listeners.
func (b *EventBus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	n := 0
	for _, subs := range b.subs {
		n += len(subs)
	}
	return n
}

func (b *EventBus) remove(kind string, id int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.subs[kind]
	for i, s := range subs {
		if s.id == id {
			b.subs[kind] = append(subs[:i:i], subs[i+1:]...)
			break
		}
	}
	if len(b.subs[kind]) == 0 {
		delete(b.subs, kind)
	}
}
