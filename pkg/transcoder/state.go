package transcoder

// State is the lifecycle state of a job.
type State int

const (
	StateIdle State = iota
	StateEncoding
	StateFinalizing
	StateDone
	StateFailed
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateEncoding:
		return "encoding"
	case StateFinalizing:
		return "finalizing"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transitions are possible.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed || s == StateCancelled
}

// Active reports whether a job in this state is still running.
func (s State) Active() bool {
	return s == StateEncoding || s == StateFinalizing
}
