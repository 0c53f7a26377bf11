package lens

import "github.com/zoobzio/capitan"

// Coordinator lifecycle signals.
var (
	// CoordinatorStarted is emitted when a Coordinator begins running its pipeline.
	CoordinatorStarted = capitan.NewSignal(
		"lens.coordinator.started",
		"Coordinator pipeline started",
	)

	// CoordinatorStopped is emitted when a Coordinator pipeline stops.
	CoordinatorStopped = capitan.NewSignal(
		"lens.coordinator.stopped",
		"Coordinator pipeline stopped",
	)

	// StateChanged is emitted when a Coordinator transitions between states.
	StateChanged = capitan.NewSignal(
		"lens.state.changed",
		"Coordinator state transition",
	)
)

// Parameter signals.
var (
	// ParamsChanged is emitted when a distinct set of request parameters is combined.
	ParamsChanged = capitan.NewSignal(
		"lens.params.changed",
		"Distinct request parameters combined",
	)

	// ParamsSkipped is emitted when combined parameters match the previous ones.
	ParamsSkipped = capitan.NewSignal(
		"lens.params.skipped",
		"Request parameters unchanged",
	)
)

// Resolution signals.
var (
	// CacheHit is emitted when a response is served from the cache.
	CacheHit = capitan.NewSignal(
		"lens.cache.hit",
		"Response served from cache",
	)

	// CacheMiss is emitted when a response must be fetched upstream.
	CacheMiss = capitan.NewSignal(
		"lens.cache.miss",
		"Response not cached",
	)

	// FetchStarted is emitted when an upstream request is issued.
	FetchStarted = capitan.NewSignal(
		"lens.fetch.started",
		"Upstream fetch started",
	)

	// FetchSucceeded is emitted when an upstream request returns a decodable page.
	FetchSucceeded = capitan.NewSignal(
		"lens.fetch.succeeded",
		"Upstream fetch succeeded",
	)

	// FetchFailed is emitted when resolving the latest parameters fails.
	FetchFailed = capitan.NewSignal(
		"lens.fetch.failed",
		"Upstream fetch failed",
	)

	// FetchSuperseded is emitted when newer parameters replace an in-flight request.
	FetchSuperseded = capitan.NewSignal(
		"lens.fetch.superseded",
		"In-flight fetch superseded by newer parameters",
	)
)
