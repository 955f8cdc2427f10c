package event

import "sync"

// DefaultBufferSize is the subscriber channel capacity used when Subscribe
// is called with a non-positive size.
const DefaultBufferSize = 64

// Subscription receives events from a Hub.
type Subscription struct {
	id uint64
	c  chan Event

	mu      sync.Mutex
	dropped uint64
}

// C returns the channel events are delivered on. It is closed when the
// subscription ends.
func (s *Subscription) C() <-chan Event {
	return s.c
}

// Dropped returns how many events were discarded because the channel was full.
func (s *Subscription) Dropped() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

// Hub is an Emitter that fans events out to subscribers.
type Hub struct {
	mu     sync.RWMutex
	subs   map[uint64]*Subscription
	nextID uint64
	closed bool
}

// NewHub creates a Hub with no subscribers.
func NewHub() *Hub {
	return &Hub{
		subs: make(map[uint64]*Subscription),
	}
}

// Subscribe registers a new subscriber with a channel of the given capacity.
// Subscribing to a closed hub returns a subscription whose channel is
// already closed.
func (h *Hub) Subscribe(size int) *Subscription {
	if size <= 0 {
		size = DefaultBufferSize
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	sub := &Subscription{id: h.nextID, c: make(chan Event, size)}
	if h.closed {
		close(sub.c)
		return sub
	}
	h.subs[sub.id] = sub
	return sub
}

// Unsubscribe removes sub and closes its channel.
func (h *Hub) Unsubscribe(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.subs[sub.id]; !exists {
		return
	}
	delete(h.subs, sub.id)
	close(sub.c)
}

// Emit delivers e to every subscriber without blocking.
func (h *Hub) Emit(e Event) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.closed {
		return ErrClosed
	}

	for _, sub := range h.subs {
		select {
		case sub.c <- e:
		default:
			sub.mu.Lock()
			sub.dropped++
			sub.mu.Unlock()
		}
	}
	return nil
}

// Count returns the number of subscribers.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Close ends all subscriptions. Subsequent Emit calls return ErrClosed.
// It is safe to call Close multiple times.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for id, sub := range h.subs {
		close(sub.c)
		delete(h.subs, id)
	}
}

// Compile-time interface satisfaction check.
var _ Emitter = (*Hub)(nil)
