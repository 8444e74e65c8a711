package room

// State is the lifecycle state of a room session.
type State int

const (
	StateActive State = iota
	StateDestroyed
)

func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateDestroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

// Cause records why a room session was destroyed.
type Cause int

const (
	CauseNone Cause = iota
	CauseExpired
	CauseUserInitiated
	CauseRemoteInitiated
)

func (c Cause) String() string {
	switch c {
	case CauseNone:
		return "none"
	case CauseExpired:
		return "expired"
	case CauseUserInitiated:
		return "user_initiated"
	case CauseRemoteInitiated:
		return "remote_initiated"
	default:
		return "unknown"
	}
}

// Lifecycle is the observable lifecycle of a room session. Cause is only
// meaningful once State is StateDestroyed.
type Lifecycle struct {
	State State
	Cause Cause
}

// Active reports whether the session is still active.
func (l Lifecycle) Active() bool {
	return l.State == StateActive
}
