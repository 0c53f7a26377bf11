package lens

import "time"

// MetricsProvider allows integration with metrics systems like Prometheus, StatsD, etc.
// Implement this interface to receive callbacks on key coordinator events.
type MetricsProvider interface {
	// OnStateChange is called when the coordinator transitions between states.
	OnStateChange(from, to State)

	// OnParamsChanged is called when distinct request parameters are combined.
	OnParamsChanged()

	// OnParamsSkipped is called when combined parameters equal the previous ones.
	OnParamsSkipped()

	// OnCacheHit is called when a response is served from the cache.
	OnCacheHit()

	// OnCacheMiss is called when a response has to be fetched upstream.
	OnCacheMiss()

	// OnFetchSuccess is called when the latest parameters resolve to a page.
	OnFetchSuccess(duration time.Duration)

	// OnFetchFailure is called when the latest parameters fail to resolve.
	OnFetchFailure(duration time.Duration)

	// OnSuperseded is called when newer parameters replace an outstanding request.
	OnSuperseded()
}

// NoOpMetricsProvider is a no-op implementation of MetricsProvider.
// Use this as an embedded type to implement only the methods you need.
type NoOpMetricsProvider struct{}

func (NoOpMetricsProvider) OnStateChange(_, _ State)       {}
func (NoOpMetricsProvider) OnParamsChanged()               {}
func (NoOpMetricsProvider) OnParamsSkipped()               {}
func (NoOpMetricsProvider) OnCacheHit()                    {}
func (NoOpMetricsProvider) OnCacheMiss()                   {}
func (NoOpMetricsProvider) OnFetchSuccess(_ time.Duration) {}
func (NoOpMetricsProvider) OnFetchFailure(_ time.Duration) {}
func (NoOpMetricsProvider) OnSuperseded()                  {}
