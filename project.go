package lens

import "sync"

// Map derives a stream applying fn to every value of src. It holds no state
// of its own: Current and every subscription read through to src.
func Map[A, B any](src Stream[A], fn func(A) B) Stream[B] {
	return mapped[A, B]{src: src, fn: fn}
}

type mapped[A, B any] struct {
	src Stream[A]
	fn  func(A) B
}

func (m mapped[A, B]) Subscribe(fn func(B)) func() {
	return m.src.Subscribe(func(a A) {
		fn(m.fn(a))
	})
}

func (m mapped[A, B]) Current() (B, bool) {
	a, ok := m.src.Current()
	if !ok {
		var zero B
		return zero, false
	}
	return m.fn(a), true
}

// Combine derives a stream from the latest values of a and b. Nothing is
// emitted until both have a value; after that every change on either side
// re-derives the output.
func Combine[A, B, C any](a Stream[A], b Stream[B], fn func(A, B) C) Stream[C] {
	return combined[A, B, C]{a: a, b: b, fn: fn}
}

type combined[A, B, C any] struct {
	a  Stream[A]
	b  Stream[B]
	fn func(A, B) C
}

func (c combined[A, B, C]) Subscribe(fn func(C)) func() {
	var (
		mu         sync.Mutex
		latestA    A
		latestB    B
		hasA, hasB bool
	)
	// fn runs outside the lock so a subscriber may mutate either input.
	update := func(set func()) {
		mu.Lock()
		set()
		ready, a, b := hasA && hasB, latestA, latestB
		mu.Unlock()
		if ready {
			fn(c.fn(a, b))
		}
	}

	unsubA := c.a.Subscribe(func(v A) {
		update(func() { latestA, hasA = v, true })
	})
	unsubB := c.b.Subscribe(func(v B) {
		update(func() { latestB, hasB = v, true })
	})

	return func() {
		unsubA()
		unsubB()
	}
}

func (c combined[A, B, C]) Current() (C, bool) {
	a, okA := c.a.Current()
	b, okB := c.b.Current()
	if !okA || !okB {
		var zero C
		return zero, false
	}
	return c.fn(a, b), true
}
