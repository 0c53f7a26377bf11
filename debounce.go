package lens

import (
	"sync"
	"time"

	"github.com/zoobzio/clockz"
)

// debouncer delays values until they have been stable for delay, then hands
// only the last one to emit. Timers come from the injected clock and are
// armed on the caller's goroutine, so a fake clock advanced right after push
// always sees the timer.
type debouncer[T any] struct {
	clock clockz.Clock
	delay time.Duration
	emit  func(T)

	mu      sync.Mutex
	seq     uint64
	pending T
	stop    chan struct{}
}

func newDebouncer[T any](clock clockz.Clock, delay time.Duration, emit func(T)) *debouncer[T] {
	return &debouncer[T]{
		clock: clock,
		delay: delay,
		emit:  emit,
	}
}

// push records v and restarts the quiet period.
func (d *debouncer[T]) push(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.seq++
	d.pending = v
	if d.stop != nil {
		close(d.stop)
		d.stop = nil
	}

	if d.delay <= 0 {
		d.emit(v)
		return
	}

	stop := make(chan struct{})
	d.stop = stop
	go d.wait(d.clock.NewTimer(d.delay), stop, d.seq)
}

func (d *debouncer[T]) wait(timer clockz.Timer, stop <-chan struct{}, seq uint64) {
	select {
	case <-stop:
		timer.Stop()
	case <-timer.C():
		d.mu.Lock()
		defer d.mu.Unlock()
		// A push between the timer firing and taking the lock owns the value now.
		if seq != d.seq {
			return
		}
		d.stop = nil
		d.emit(d.pending)
	}
}

// cancel drops any pending value.
func (d *debouncer[T]) cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.seq++
	if d.stop != nil {
		close(d.stop)
		d.stop = nil
	}
}
