package lens

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/zoobzio/capitan"
	"github.com/zoobzio/clockz"

	"github.com/zoobzio/lens/cache"
)

// Coordinator turns search, page and limit changes into deduplicated,
// debounced, cached requests against a paginated search API, and publishes
// the derived results as replay-latest streams.
//
// Input state lives in Subjects owned by the Coordinator and changes only
// through its mutators. Once started, a single loop goroutine combines the
// latest inputs, drops repeats, and resolves each distinct set of
// parameters. Each resolution is tagged with a generation; only the result
// for the newest generation is ever published.
type Coordinator[T any] struct {
	source   Source
	store    cache.Cache[[]byte]
	debounce time.Duration
	clock    clockz.Clock
	codec    Codec
	metrics  MetricsProvider
	logger   zerolog.Logger
	limits   []int
	clamp    bool
	onStop   func(State)

	search  *Subject[string]
	limit   *Subject[int]
	page    *Subject[int]
	apiKey  *Subject[string]
	loading *Subject[bool]

	results *Replay[Result[T]]
	pages   *Replay[Page[T]]

	state        atomic.Int32
	lastError    atomic.Pointer[error]
	errorHistory *errorRing

	inbox *inbox[event[T]]

	mu      sync.Mutex
	started bool
}

// New creates a Coordinator that fetches pages of T from source, sending
// apiKey with every request.
//
// Instance configuration uses chainable methods before calling Start().
//
// Example:
//
//	heroes := lens.New[hero.Hero](client.New(baseURL), apiKey).
//	    Debounce(300 * time.Millisecond).
//	    Logger(logger)
//
//	if err := heroes.Start(ctx); err != nil {
//	    return err
//	}
//	heroes.Search("spider")
func New[T any](source Source, apiKey string) *Coordinator[T] {
	c := &Coordinator[T]{
		source:   source,
		store:    cache.NewMemory[[]byte](),
		debounce: DefaultDebounce,
		clock:    clockz.RealClock,
		codec:    JSONCodec{},
		logger:   zerolog.Nop(),
		limits:   slices.Clone(DefaultLimits),

		search:  NewSubject(DefaultSearch),
		limit:   NewSubject(DefaultLimit),
		page:    NewSubject(DefaultPage),
		apiKey:  NewSubject(apiKey),
		loading: NewSubject(false),

		results: NewReplay[Result[T]](),
		pages:   NewReplay[Page[T]](),

		errorHistory: newErrorRing(0),
		inbox:        newInbox[event[T]](),
	}
	c.state.Store(int32(StateIdle))
	return c
}

// -----------------------------------------------------------------------------
// Chainable Instance Configuration
// -----------------------------------------------------------------------------

// Debounce sets how long search and page changes must settle before they
// reach the request. Limit and API key changes are never debounced.
// Default: 500ms. Must be called before Start().
func (c *Coordinator[T]) Debounce(d time.Duration) *Coordinator[T] {
	c.debounce = d
	return c
}

// Clock sets a custom clock for time operations.
// Use this with clockz.FakeClock for deterministic debounce testing.
// Must be called before Start().
func (c *Coordinator[T]) Clock(clock clockz.Clock) *Coordinator[T] {
	c.clock = clock
	return c
}

// Codec sets the codec for decoding response bodies. The source should ask
// for the same format, e.g. client.WithAccept(codec.ContentType()).
// Default: JSONCodec. Must be called before Start().
func (c *Coordinator[T]) Codec(codec Codec) *Coordinator[T] {
	c.codec = codec
	return c
}

// Cache sets the response store. Default: an unbounded, append-only
// in-memory store. Must be called before Start().
func (c *Coordinator[T]) Cache(store cache.Cache[[]byte]) *Coordinator[T] {
	c.store = store
	return c
}

// Metrics sets a metrics provider for observability integration.
// Must be called before Start().
func (c *Coordinator[T]) Metrics(provider MetricsProvider) *Coordinator[T] {
	c.metrics = provider
	return c
}

// Logger sets the structured logger. Default: zerolog.Nop().
// Must be called before Start().
func (c *Coordinator[T]) Logger(logger zerolog.Logger) *Coordinator[T] {
	c.logger = logger.With().Str("component", "Coordinator").Logger()
	return c
}

// PageSizes replaces the allowed page sizes and resets the limit to the
// largest of them. Non-positive sizes are ignored; an empty set keeps the
// defaults. Must be called before Start().
func (c *Coordinator[T]) PageSizes(sizes ...int) *Coordinator[T] {
	allowed := make([]int, 0, len(sizes))
	for _, n := range sizes {
		if n > 0 && !slices.Contains(allowed, n) {
			allowed = append(allowed, n)
		}
	}
	if len(allowed) == 0 {
		return c
	}
	slices.Sort(allowed)
	c.limits = allowed
	c.limit.Set(allowed[len(allowed)-1])
	return c
}

// ClampPages keeps MovePageBy within [0, last page] using the latest known
// page count. Without it the page is passed through as requested.
// Must be called before Start().
func (c *Coordinator[T]) ClampPages() *Coordinator[T] {
	c.clamp = true
	return c
}

// OnStop sets a callback invoked with the final state when the pipeline
// stops. Must be called before Start().
func (c *Coordinator[T]) OnStop(fn func(State)) *Coordinator[T] {
	c.onStop = fn
	return c
}

// ErrorHistorySize sets the number of recent failures to retain.
// Use 0 (default) to only retain the most recent error via LastError().
// Must be called before Start().
func (c *Coordinator[T]) ErrorHistorySize(n int) *Coordinator[T] {
	c.errorHistory = newErrorRing(n)
	return c
}

// -----------------------------------------------------------------------------
// Mutators
// -----------------------------------------------------------------------------

// Search sets the search term and returns to the first page.
func (c *Coordinator[T]) Search(term string) {
	c.search.Set(term)
	c.resetPage()
}

// MovePageBy moves the page by delta.
func (c *Coordinator[T]) MovePageBy(delta int) {
	next := c.page.Get() + delta
	if c.clamp {
		if pages, ok := c.TotalPages().Current(); ok && next > pages-1 {
			next = pages - 1
		}
		if next < 0 {
			next = 0
		}
	}
	c.page.Set(next)
}

// SetLimit sets the page size and returns to the first page. It fails with
// ErrInvalidLimit when n is not one of Limits().
func (c *Coordinator[T]) SetLimit(n int) error {
	if !validLimit(c.limits, n) {
		return fmt.Errorf("%w: %d", ErrInvalidLimit, n)
	}
	c.limit.Set(n)
	c.resetPage()
	return nil
}

// resetPage returns to the first page. An unchanged page is not re-emitted,
// so a repeated Search posts a single event.
func (c *Coordinator[T]) resetPage() {
	if c.page.Get() != DefaultPage {
		c.page.Set(DefaultPage)
	}
}

// SetAPIKey replaces the key sent upstream. The change applies immediately.
func (c *Coordinator[T]) SetAPIKey(key string) {
	c.apiKey.Set(key)
}

// -----------------------------------------------------------------------------
// Published Streams
// -----------------------------------------------------------------------------

// Limits returns the allowed page sizes, ascending.
func (c *Coordinator[T]) Limits() []int {
	return slices.Clone(c.limits)
}

// SearchTerm streams the current search term.
func (c *Coordinator[T]) SearchTerm() Stream[string] { return c.search }

// Limit streams the current page size.
func (c *Coordinator[T]) Limit() Stream[int] { return c.limit }

// Page streams the zero-based page.
func (c *Coordinator[T]) Page() Stream[int] { return c.page }

// UserPage streams the one-based page for display.
func (c *Coordinator[T]) UserPage() Stream[int] {
	return Map[int, int](c.page, func(p int) int { return p + 1 })
}

// Loading streams whether a result for the latest parameters is outstanding.
func (c *Coordinator[T]) Loading() Stream[bool] { return c.loading }

// Results streams every published result, including failures.
func (c *Coordinator[T]) Results() Stream[Result[T]] { return c.results }

// Items streams the items of the latest successful page.
func (c *Coordinator[T]) Items() Stream[[]T] {
	return Map[Page[T], []T](c.pages, func(p Page[T]) []T { return p.Items })
}

// Total streams the total number of results available upstream.
func (c *Coordinator[T]) Total() Stream[int] {
	return Map[Page[T], int](c.pages, func(p Page[T]) int { return p.Total })
}

// TotalPages streams the page count for the latest total at the current limit.
func (c *Coordinator[T]) TotalPages() Stream[int] {
	return Combine[int, int, int](c.Total(), c.limit, totalPages)
}

// State returns the current state of the Coordinator.
func (c *Coordinator[T]) State() State {
	return State(c.state.Load())
}

// LastError returns the error of the latest failed result, or nil once a
// later result succeeds.
func (c *Coordinator[T]) LastError() error {
	ptr := c.lastError.Load()
	if ptr == nil {
		return nil
	}
	return *ptr
}

// ErrorHistory returns the recent failures, oldest first.
// Returns nil if error history is not enabled (see ErrorHistorySize).
func (c *Coordinator[T]) ErrorHistory() []error {
	return c.errorHistory.all()
}

// -----------------------------------------------------------------------------
// Pipeline
// -----------------------------------------------------------------------------

type eventKind int

const (
	eventSearch eventKind = iota
	eventPage
	eventLimit
	eventAPIKey
	eventResult
)

type event[T any] struct {
	kind   eventKind
	text   string
	number int
	result Result[T]
	took   time.Duration
}

// Axes that must report before parameters can be combined.
const (
	haveSearch = 1 << iota
	havePage
	haveLimit
	haveAPIKey

	haveAll = haveSearch | havePage | haveLimit | haveAPIKey
)

// loop is the state owned by the pipeline goroutine.
type loop struct {
	query  Query
	apiKey string
	have   int

	lastKey  string
	hasKey   bool
	gen      uint64
	inflight bool
	cancel   context.CancelFunc
}

// Start subscribes to the inputs and runs the pipeline until ctx is done.
// Parameters are combined once every input has reported, which for the
// debounced search and page inputs means one debounce period after Start.
//
// Start can only be called once. Subsequent calls return ErrAlreadyStarted.
func (c *Coordinator[T]) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return ErrAlreadyStarted
	}
	c.started = true
	c.mu.Unlock()

	capitan.Emit(ctx, CoordinatorStarted,
		KeyDebounce.Field(c.debounce),
	)

	res := &resolver[T]{
		source:  c.source,
		store:   c.store,
		codec:   c.codec,
		logger:  c.logger,
		metrics: c.metrics,
	}

	searches := newDebouncer(c.clock, c.debounce, func(term string) {
		c.inbox.post(event[T]{kind: eventSearch, text: term})
	})
	pages := newDebouncer(c.clock, c.debounce, func(page int) {
		c.inbox.post(event[T]{kind: eventPage, number: page})
	})

	unsubscribe := []func(){
		c.search.Subscribe(searches.push),
		c.limit.Subscribe(func(n int) {
			c.inbox.post(event[T]{kind: eventLimit, number: n})
		}),
		c.page.Subscribe(pages.push),
		c.apiKey.Subscribe(func(key string) {
			c.inbox.post(event[T]{kind: eventAPIKey, text: key})
		}),
	}

	go func() {
		st := &loop{}
		defer func() {
			for _, fn := range unsubscribe {
				fn()
			}
			searches.cancel()
			pages.cancel()
			if st.cancel != nil {
				st.cancel()
			}
			finalState := c.State()
			capitan.Emit(ctx, CoordinatorStopped,
				KeyState.Field(finalState.String()),
			)
			if c.onStop != nil {
				c.onStop(finalState)
			}
		}()
		c.run(ctx, st, res)
	}()

	return nil
}

func (c *Coordinator[T]) run(ctx context.Context, st *loop, res *resolver[T]) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.inbox.wake:
			for _, ev := range c.inbox.drain() {
				if ctx.Err() != nil {
					return
				}
				c.handle(ctx, st, res, ev)
			}
		}
	}
}

func (c *Coordinator[T]) handle(ctx context.Context, st *loop, res *resolver[T], ev event[T]) {
	switch ev.kind {
	case eventSearch:
		st.query.Search = ev.text
		st.have |= haveSearch
	case eventPage:
		st.query.Page = ev.number
		st.have |= havePage
	case eventLimit:
		st.query.Limit = ev.number
		st.have |= haveLimit
	case eventAPIKey:
		st.apiKey = ev.text
		st.have |= haveAPIKey
	case eventResult:
		c.complete(ctx, st, ev)
		return
	}

	if st.have == haveAll {
		c.combine(ctx, st, res)
	}
}

// combine builds parameters from the latest inputs and, when they differ from
// the previous ones, starts resolving them as a new generation.
func (c *Coordinator[T]) combine(ctx context.Context, st *loop, res *resolver[T]) {
	params := st.query.Params(st.apiKey)
	key := params.Key()

	if st.hasKey && key == st.lastKey {
		capitan.Emit(ctx, ParamsSkipped, KeyParams.Field(params.Redacted()))
		if c.metrics != nil {
			c.metrics.OnParamsSkipped()
		}
		return
	}
	st.lastKey, st.hasKey = key, true
	st.gen++

	capitan.Emit(ctx, ParamsChanged,
		KeyParams.Field(params.Redacted()),
		KeyGeneration.Field(int(st.gen)), //nolint:gosec // generations stay far below MaxInt
	)
	if c.metrics != nil {
		c.metrics.OnParamsChanged()
	}
	c.logger.Debug().Uint64("generation", st.gen).Str("params", params.Redacted()).Msg("Request parameters changed.")

	if st.inflight {
		capitan.Emit(ctx, FetchSuperseded, KeyGeneration.Field(int(st.gen-1))) //nolint:gosec // see above
		if c.metrics != nil {
			c.metrics.OnSuperseded()
		}
	}
	if st.cancel != nil {
		st.cancel()
	}

	fetchCtx, cancel := context.WithCancel(ctx)
	st.cancel = cancel
	st.inflight = true

	if !c.loading.Get() {
		c.loading.Set(true)
	}
	c.transitionState(ctx, StateLoading)

	gen := st.gen
	go func() {
		start := c.clock.Now()
		result := Result[T]{Params: params, Generation: gen}
		res.resolve(fetchCtx, &result)
		c.inbox.post(event[T]{kind: eventResult, result: result, took: c.clock.Since(start)})
	}()
}

// complete publishes a result if it belongs to the current generation.
func (c *Coordinator[T]) complete(ctx context.Context, st *loop, ev event[T]) {
	result := ev.result
	if result.Generation != st.gen {
		c.logger.Debug().Uint64("generation", result.Generation).Msg("Discarding superseded result.")
		return
	}
	st.inflight = false
	if st.cancel != nil {
		st.cancel()
		st.cancel = nil
	}

	if result.Err != nil {
		c.setError(result.Err)
		capitan.Emit(ctx, FetchFailed,
			KeyParams.Field(result.Params.Redacted()),
			KeyError.Field(result.Err.Error()),
			KeyDuration.Field(ev.took),
		)
		if c.metrics != nil {
			c.metrics.OnFetchFailure(ev.took)
		}
		c.logger.Error().Err(result.Err).Uint64("generation", result.Generation).Msg("Failed to resolve request.")

		// Nothing was cached, so the same parameters may be requested again.
		st.hasKey = false

		c.results.Publish(result)
		c.transitionState(ctx, StateFailed)
		c.loading.Set(false)
		return
	}

	c.lastError.Store(nil)
	c.errorHistory.clear()
	if !result.Cached {
		capitan.Emit(ctx, FetchSucceeded,
			KeyRequestID.Field(result.RequestID),
			KeyDuration.Field(ev.took),
		)
		if c.metrics != nil {
			c.metrics.OnFetchSuccess(ev.took)
		}
	}

	c.pages.Publish(result.Page)
	c.results.Publish(result)
	c.transitionState(ctx, StateReady)
	c.loading.Set(false)
}

// transitionState updates the state and emits a state change event if changed.
func (c *Coordinator[T]) transitionState(ctx context.Context, newState State) {
	oldState := State(c.state.Swap(int32(newState)))
	if oldState == newState {
		return
	}
	capitan.Emit(ctx, StateChanged,
		KeyOldState.Field(oldState.String()),
		KeyNewState.Field(newState.String()),
	)
	if c.metrics != nil {
		c.metrics.OnStateChange(oldState, newState)
	}
}

// setError stores an error atomically and adds it to the error history.
func (c *Coordinator[T]) setError(err error) {
	e := err
	c.lastError.Store(&e)
	c.errorHistory.push(err)
}
