package lens

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"
)

// Stream is a live sequence of values that replays its latest value to new
// subscribers.
type Stream[T any] interface {
	// Subscribe registers fn. If the stream holds a value, fn is called with it
	// before Subscribe returns; afterwards fn receives every new value in order.
	// The returned func removes the subscription.
	Subscribe(fn func(T)) (unsubscribe func())

	// Current returns the latest value and true, or the zero value and false
	// if nothing has been emitted yet.
	Current() (T, bool)
}

type subscriber[T any] struct {
	fn     func(T)
	active atomic.Bool
}

// broadcast fans a value out to subscribers in the order they subscribed.
type broadcast[T any] struct {
	mu    sync.Mutex
	value T
	ok    bool
	subs  []*subscriber[T]
}

func (b *broadcast[T]) emit(v T) {
	b.mu.Lock()
	b.value = v
	b.ok = true
	subs := slices.Clone(b.subs)
	b.mu.Unlock()

	for _, s := range subs {
		if s.active.Load() {
			s.fn(v)
		}
	}
}

func (b *broadcast[T]) subscribe(fn func(T)) func() {
	s := &subscriber[T]{fn: fn}
	s.active.Store(true)

	b.mu.Lock()
	b.subs = append(b.subs, s)
	v, ok := b.value, b.ok
	b.mu.Unlock()

	if ok {
		fn(v)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			s.active.Store(false)
			b.mu.Lock()
			defer b.mu.Unlock()
			for i, existing := range b.subs {
				if existing == s {
					b.subs = append(b.subs[:i], b.subs[i+1:]...)
					break
				}
			}
		})
	}
}

func (b *broadcast[T]) current() (T, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.value, b.ok
}

// Subject holds the current value of one input axis. Subscribers receive the
// current value immediately and every later one.
type Subject[T any] struct {
	b broadcast[T]
}

// NewSubject creates a Subject holding initial.
func NewSubject[T any](initial T) *Subject[T] {
	s := &Subject[T]{}
	s.b.value = initial
	s.b.ok = true
	return s
}

// Get returns the current value.
func (s *Subject[T]) Get() T {
	v, _ := s.b.current()
	return v
}

// Set replaces the current value and notifies subscribers synchronously.
func (s *Subject[T]) Set(v T) {
	s.b.emit(v)
}

// Subscribe implements Stream.
func (s *Subject[T]) Subscribe(fn func(T)) func() {
	return s.b.subscribe(fn)
}

// Current implements Stream. A Subject always holds a value.
func (s *Subject[T]) Current() (T, bool) {
	return s.b.current()
}

// Replay multicasts published values and replays the latest one to late
// subscribers. Unlike Subject it starts empty.
type Replay[T any] struct {
	b broadcast[T]
}

// NewReplay creates an empty Replay.
func NewReplay[T any]() *Replay[T] {
	return &Replay[T]{}
}

// Publish records v as the latest value and delivers it to every subscriber.
func (r *Replay[T]) Publish(v T) {
	r.b.emit(v)
}

// Subscribe implements Stream.
func (r *Replay[T]) Subscribe(fn func(T)) func() {
	return r.b.subscribe(fn)
}

// Current implements Stream.
func (r *Replay[T]) Current() (T, bool) {
	return r.b.current()
}

// Watch exposes s as a channel. The channel holds at most one pending value:
// a newer value replaces one the reader has not taken yet. The channel is
// closed once ctx is done.
func Watch[T any](ctx context.Context, s Stream[T]) <-chan T {
	out := make(chan T, 1)

	var (
		mu     sync.Mutex
		closed bool
	)
	unsubscribe := s.Subscribe(func(v T) {
		mu.Lock()
		defer mu.Unlock()
		if closed {
			return
		}
		select {
		case out <- v:
		default:
			select {
			case <-out:
			default:
			}
			out <- v
		}
	})

	go func() {
		<-ctx.Done()
		unsubscribe()
		mu.Lock()
		closed = true
		close(out)
		mu.Unlock()
	}()

	return out
}
