// Package input provides the host input queue and the decoder agent that
// feeds it from a VT input pipe.
package input

import (
	"sync/atomic"

	"github.com/dshills/vtbridge/internal/input/key"
)

// DefaultQueueSize is the event capacity used when none is given.
const DefaultQueueSize = 256

// Queue is a bounded, thread-safe queue of decoded key events. Producers
// never block: when the queue is full, events are dropped and counted.
type Queue struct {
	events  chan key.Event
	dropped atomic.Uint64
}

// NewQueue creates a queue with the given capacity.
// A capacity <= 0 uses DefaultQueueSize.
func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = DefaultQueueSize
	}
	return &Queue{events: make(chan key.Event, capacity)}
}

// Post adds an event to the queue without blocking. Returns false if the
// queue was full and the event was dropped.
func (q *Queue) Post(ev key.Event) bool {
	select {
	case q.events <- ev:
		return true
	default:
		q.dropped.Add(1)
		return false
	}
}

// Poll blocks until an event is available and returns it.
func (q *Queue) Poll() key.Event {
	return <-q.events
}

// TryPoll returns the next event without blocking.
func (q *Queue) TryPoll() (key.Event, bool) {
	select {
	case ev := <-q.events:
		return ev, true
	default:
		return key.Event{}, false
	}
}

// Len returns the number of queued events.
func (q *Queue) Len() int {
	return len(q.events)
}

// Dropped returns the number of events dropped due to a full queue.
func (q *Queue) Dropped() uint64 {
	return q.dropped.Load()
}
