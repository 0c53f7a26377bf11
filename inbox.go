package lens

import "sync"

// inbox is an unbounded queue feeding the coordinator loop. post never
// blocks, so subscribers notified from inside the loop may call mutators.
type inbox[E any] struct {
	mu    sync.Mutex
	queue []E
	wake  chan struct{}
}

func newInbox[E any]() *inbox[E] {
	return &inbox[E]{wake: make(chan struct{}, 1)}
}

func (b *inbox[E]) post(e E) {
	b.mu.Lock()
	b.queue = append(b.queue, e)
	b.mu.Unlock()

	select {
	case b.wake <- struct{}{}:
	default:
	}
}

// drain takes every queued event in posting order.
func (b *inbox[E]) drain() []E {
	b.mu.Lock()
	defer b.mu.Unlock()

	q := b.queue
	b.queue = nil
	return q
}
