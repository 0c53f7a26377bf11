/*
Package lens coordinates query state for paginated search APIs.

A Coordinator owns three inputs (search term, page and page size) and turns
every distinct combination of them into one request. Search and page changes
are debounced, repeated parameters are dropped, responses are cached by their
request parameters, and only the newest request's result is ever published.

lens is designed to sit behind a UI or CLI that mutates the inputs and renders
the published streams. It does not render or route anything itself.

# Basic Usage

Create a coordinator over a Source and start it:

	src, err := client.New("https://gateway.example.com")
	if err != nil {
	    return err
	}

	heroes := lens.New[hero.Hero](src, apiKey).
	    Debounce(300 * time.Millisecond).
	    Logger(logger)

	if err := heroes.Start(ctx); err != nil {
	    return err
	}

Drive it with the mutators:

	heroes.Search("spi")    // debounced, returns to the first page
	heroes.MovePageBy(1)    // debounced
	heroes.SetLimit(25)     // immediate, returns to the first page

# Streams

Every output is a Stream that replays its latest value to new subscribers:

	stop := heroes.Items().Subscribe(func(items []hero.Hero) {
	    render(items)
	})
	defer stop()

	for loading := range lens.Watch(ctx, heroes.Loading()) {
	    spinner(loading)
	}

Items, Total and TotalPages follow the latest successful page. Results
carries every published result, failures included, so a failed request never
clears what is on screen.

# Caching

Responses are stored verbatim under their parameter key. The default store
is unbounded and append-only; cache.NewLRU bounds it and cache.NewRedis shares
it between processes:

	store, err := cache.NewLRU[[]byte](512)
	heroes.Cache(store)

Concurrent misses for the same key share one upstream call.

# Observability

Lifecycle events are emitted as capitan signals (see signals.go), metrics go
to an optional MetricsProvider, and structured logs go to a zerolog.Logger.

# Testing

Use clockz.FakeClock to control debouncing deterministically:

	clock := clockz.NewFakeClock()
	heroes := lens.New[hero.Hero](src, key).Clock(clock)
	heroes.Start(ctx)

	clock.Advance(lens.DefaultDebounce)
	clock.BlockUntilReady()

The testing package provides fake sources and stream recorders.
*/
package lens
