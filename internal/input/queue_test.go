package input

import (
	"sync"
	"testing"

	"github.com/dshills/vtbridge/internal/input/key"
)

func TestQueuePostPoll(t *testing.T) {
	q := NewQueue(4)

	if !q.Post(key.NewRuneEvent('a', key.ModNone)) {
		t.Fatal("Post to empty queue failed")
	}
	if got := q.Len(); got != 1 {
		t.Errorf("Len() = %d, want 1", got)
	}

	ev := q.Poll()
	if ev.Rune != 'a' {
		t.Errorf("Poll() = %+v, want 'a'", ev)
	}

	if _, ok := q.TryPoll(); ok {
		t.Error("TryPoll on empty queue should return false")
	}
}

func TestQueueDropsWhenFull(t *testing.T) {
	q := NewQueue(2)

	q.Post(key.NewRuneEvent('a', key.ModNone))
	q.Post(key.NewRuneEvent('b', key.ModNone))

	if q.Post(key.NewRuneEvent('c', key.ModNone)) {
		t.Error("Post to full queue should fail")
	}
	if got := q.Dropped(); got != 1 {
		t.Errorf("Dropped() = %d, want 1", got)
	}

	// Draining makes room again.
	q.Poll()
	if !q.Post(key.NewRuneEvent('d', key.ModNone)) {
		t.Error("Post after drain failed")
	}
}

func TestQueueDefaultCapacity(t *testing.T) {
	q := NewQueue(0)
	for i := 0; i < DefaultQueueSize; i++ {
		if !q.Post(key.NewRuneEvent('x', key.ModNone)) {
			t.Fatalf("Post %d failed before default capacity reached", i)
		}
	}
	if q.Post(key.NewRuneEvent('x', key.ModNone)) {
		t.Error("queue should be full at default capacity")
	}
}

func TestQueueConcurrentProducers(t *testing.T) {
	q := NewQueue(1024)

	var wg sync.WaitGroup
	const producers = 8
	const perProducer = 100

	for i := 0; i < producers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perProducer; j++ {
				q.Post(key.NewRuneEvent('x', key.ModNone))
			}
		}()
	}
	wg.Wait()

	if got := q.Len(); got != producers*perProducer {
		t.Errorf("Len() = %d, want %d", got, producers*perProducer)
	}
	if got := q.Dropped(); got != 0 {
		t.Errorf("Dropped() = %d, want 0", got)
	}
}
