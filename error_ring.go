package lens

import "sync"

// errorRing keeps the most recent fetch failures, oldest first.
// A nil ring discards everything.
type errorRing struct {
	mu     sync.RWMutex
	limit  int
	errors []error
}

// newErrorRing returns a ring holding up to size errors, or nil when size
// is not positive.
func newErrorRing(size int) *errorRing {
	if size <= 0 {
		return nil
	}
	return &errorRing{
		limit:  size,
		errors: make([]error, 0, size),
	}
}

// push records err, dropping the oldest entry once the ring is full.
func (r *errorRing) push(err error) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.errors) == r.limit {
		copy(r.errors, r.errors[1:])
		r.errors = r.errors[:r.limit-1]
	}
	r.errors = append(r.errors, err)
}

// clear forgets every recorded error.
func (r *errorRing) clear() {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	clear(r.errors)
	r.errors = r.errors[:0]
}

// all returns a copy of the recorded errors, oldest first.
func (r *errorRing) all() []error {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.errors) == 0 {
		return nil
	}
	out := make([]error, len(r.errors))
	copy(out, r.errors)
	return out
}
