// Package testing provides test utilities and helpers for lens coordinators.
package testing

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/zoobzio/clockz"

	"github.com/zoobzio/lens"
)

// Item is a minimal search result used in tests.
type Item struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Items builds one Item per name with sequential IDs starting at 1.
func Items(names ...string) []Item {
	items := make([]Item, len(names))
	for i, name := range names {
		items[i] = Item{ID: i + 1, Name: name}
	}
	return items
}

// EnvelopeJSON renders a successful upstream response holding items.
func EnvelopeJSON[T any](total, offset, limit int, items []T) []byte {
	if items == nil {
		items = []T{}
	}
	env := lens.Envelope[T]{
		Code:   200,
		Status: "Ok",
		Data: &lens.Container[T]{
			Offset:  offset,
			Limit:   limit,
			Total:   &total,
			Count:   len(items),
			Results: items,
		},
	}
	data, err := json.Marshal(env)
	if err != nil {
		panic(err)
	}
	return data
}

// CountingSource is a lens.Source that records every call and answers
// through Respond. A nil Respond answers with an empty page.
type CountingSource struct {
	Respond func(ctx context.Context, params lens.Params) ([]byte, error)

	calls atomic.Int32
	mu    sync.Mutex
	seen  []lens.Params
}

// Fetch implements lens.Source.
func (s *CountingSource) Fetch(ctx context.Context, params lens.Params) ([]byte, error) {
	s.calls.Add(1)
	s.mu.Lock()
	s.seen = append(s.seen, params)
	s.mu.Unlock()

	if s.Respond == nil {
		return EnvelopeJSON[Item](0, params.Offset, params.Limit, nil), nil
	}
	return s.Respond(ctx, params)
}

// Calls returns how many times Fetch has been called.
func (s *CountingSource) Calls() int {
	return int(s.calls.Load())
}

// Params returns the parameters of every call, in call order.
func (s *CountingSource) Params() []lens.Params {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]lens.Params, len(s.seen))
	copy(out, s.seen)
	return out
}

// Call is one outstanding fetch against a BlockingSource.
type Call struct {
	Params lens.Params
	reply  chan reply
}

type reply struct {
	body []byte
	err  error
}

// Respond releases the call with body and err.
func (c *Call) Respond(body []byte, err error) {
	c.reply <- reply{body: body, err: err}
}

// BlockingSource is a lens.Source whose fetches wait until the test releases
// them, so tests control the order in which responses arrive.
type BlockingSource struct {
	calls chan *Call
}

// NewBlockingSource creates a BlockingSource.
func NewBlockingSource() *BlockingSource {
	return &BlockingSource{calls: make(chan *Call, 16)}
}

// Fetch implements lens.Source.
func (s *BlockingSource) Fetch(ctx context.Context, params lens.Params) ([]byte, error) {
	call := &Call{Params: params, reply: make(chan reply, 1)}
	s.calls <- call
	select {
	case r := <-call.reply:
		return r.body, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Next waits for the next call, failing the test after timeout.
func (s *BlockingSource) Next(t *testing.T, timeout time.Duration) *Call {
	t.Helper()
	select {
	case call := <-s.calls:
		return call
	case <-time.After(timeout):
		t.Fatal("timeout waiting for fetch")
		return nil
	}
}

// WaitFor polls a condition until it returns true or timeout is reached.
// Returns true if the condition was met, false if timeout occurred.
func WaitFor(t *testing.T, timeout time.Duration, condition func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return false
}

// Settle advances clock past d so pending debounces fire.
func Settle(clock *clockz.FakeClock, d time.Duration) {
	clock.Advance(d)
	clock.BlockUntilReady()
}

// Recorder collects every value a stream emits.
type Recorder[T any] struct {
	mu     sync.Mutex
	values []T
	stop   func()
}

// Record subscribes to s until the returned Recorder is stopped.
func Record[T any](s lens.Stream[T]) *Recorder[T] {
	r := &Recorder[T]{}
	r.stop = s.Subscribe(func(v T) {
		r.mu.Lock()
		r.values = append(r.values, v)
		r.mu.Unlock()
	})
	return r
}

// Values returns a copy of the values seen so far.
func (r *Recorder[T]) Values() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]T, len(r.values))
	copy(out, r.values)
	return out
}

// Len returns the number of values seen so far.
func (r *Recorder[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.values)
}

// Stop unsubscribes the recorder.
func (r *Recorder[T]) Stop() {
	r.stop()
}

// CountingMetrics is a lens.MetricsProvider that counts parameter and fetch
// events.
type CountingMetrics struct {
	lens.NoOpMetricsProvider

	Changed    atomic.Int32
	Skipped    atomic.Int32
	Hits       atomic.Int32
	Misses     atomic.Int32
	Successes  atomic.Int32
	Failures   atomic.Int32
	Superseded atomic.Int32
}

func (m *CountingMetrics) OnParamsChanged()               { m.Changed.Add(1) }
func (m *CountingMetrics) OnParamsSkipped()               { m.Skipped.Add(1) }
func (m *CountingMetrics) OnCacheHit()                    { m.Hits.Add(1) }
func (m *CountingMetrics) OnCacheMiss()                   { m.Misses.Add(1) }
func (m *CountingMetrics) OnFetchSuccess(_ time.Duration) { m.Successes.Add(1) }
func (m *CountingMetrics) OnFetchFailure(_ time.Duration) { m.Failures.Add(1) }
func (m *CountingMetrics) OnSuperseded()                  { m.Superseded.Add(1) }
