package router

import (
	"context"
	"sync"
	"time"

	"github.com/atomicstack/tab-popup-switcher/internal/logging/events"
)

const (
	defaultGrace = 2 * time.Second
	queueDepth   = 16
)

// Hub queues coordinator-to-overlay pushes. An overlay counts as connected
// while it is waiting in Next, or for a short grace period after its last
// wait returned, which covers the gap between long-polls.
type Hub struct {
	mu       sync.Mutex
	queue    chan Envelope
	waiting  int
	lastSeen time.Time
	grace    time.Duration
	now      func() time.Time
}

func NewHub() *Hub {
	return &Hub{
		queue: make(chan Envelope, queueDepth),
		grace: defaultGrace,
		now:   time.Now,
	}
}

// Connected reports whether an overlay is listening.
func (h *Hub) Connected() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.connectedLocked()
}

func (h *Hub) connectedLocked() bool {
	if h.waiting > 0 {
		return true
	}
	return !h.lastSeen.IsZero() && h.now().Sub(h.lastSeen) <= h.grace
}

// Publish queues a payload-less msgType for the overlay.
func (h *Hub) Publish(msgType string) bool {
	return h.PublishPayload(msgType, nil)
}

// PublishPayload queues msgType with payload. It reports false when no
// overlay is connected or the queue is full.
func (h *Hub) PublishPayload(msgType string, payload interface{}) bool {
	h.mu.Lock()
	connected := h.connectedLocked()
	h.mu.Unlock()
	if !connected {
		events.Router.Push(msgType, 0)
		return false
	}
	env, err := NewEnvelope(msgType, payload)
	if err != nil {
		return false
	}
	select {
	case h.queue <- env:
		events.Router.Push(msgType, 1)
		return true
	default:
		return false
	}
}

// Next waits for the next push.
func (h *Hub) Next(ctx context.Context) (Envelope, error) {
	h.mu.Lock()
	h.waiting++
	h.mu.Unlock()
	defer func() {
		h.mu.Lock()
		h.waiting--
		h.lastSeen = h.now()
		h.mu.Unlock()
	}()
	select {
	case env := <-h.queue:
		return env, nil
	case <-ctx.Done():
		return Envelope{}, ctx.Err()
	}
}

// Disconnect forgets the overlay and drops anything still queued.
func (h *Hub) Disconnect() {
	h.mu.Lock()
	h.lastSeen = time.Time{}
	h.mu.Unlock()
	for {
		select {
		case <-h.queue:
		default:
			return
		}
	}
}
