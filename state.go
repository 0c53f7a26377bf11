package lens

// State represents where a Coordinator is in its fetch cycle.
type State int32

const (
	// StateIdle indicates no request parameters have been combined yet.
	StateIdle State = iota

	// StateLoading indicates a result for the latest parameters is outstanding.
	StateLoading

	// StateReady indicates the latest parameters resolved to a published page.
	StateReady

	// StateFailed indicates the latest parameters failed to resolve. The last
	// successful page remains published and the pipeline keeps running.
	StateFailed
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}
