package user

// State is the session cache state.
type State int

const (
	// StateUnknown means no fetch has completed yet.
	StateUnknown State = iota
	// StateAuthenticated means the last fetch returned a user.
	StateAuthenticated
	// StateUnauthenticated means the last fetch failed or the session ended.
	StateUnauthenticated
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateUnknown:
		return "unknown"
	case StateAuthenticated:
		return "authenticated"
	case StateUnauthenticated:
		return "unauthenticated"
	default:
		return "invalid"
	}
}
