package lens

import "github.com/zoobzio/capitan"

// Field keys for Coordinator events.
var (
	// KeyState is the current state of the Coordinator.
	KeyState = capitan.NewStringKey("state")

	// KeyOldState is the previous state before a transition.
	KeyOldState = capitan.NewStringKey("old_state")

	// KeyNewState is the new state after a transition.
	KeyNewState = capitan.NewStringKey("new_state")

	// KeyError is the error message when an operation fails.
	KeyError = capitan.NewStringKey("error")

	// KeyDebounce is the configured debounce duration.
	KeyDebounce = capitan.NewDurationKey("debounce")

	// KeyDuration is how long a resolution took.
	KeyDuration = capitan.NewDurationKey("duration")

	// KeyParams is the redacted cache key of the request parameters.
	KeyParams = capitan.NewStringKey("params")

	// KeyGeneration is the parameter generation a signal refers to.
	KeyGeneration = capitan.NewIntKey("generation")

	// KeyRequestID is the identifier sent upstream with a fetch.
	KeyRequestID = capitan.NewStringKey("request_id")
)
