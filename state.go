package resock

// State is the lifecycle state of a client. Exactly one transport handle
// is live in any non-terminated state; none once terminated.
type State uint8

const (
	StateConnecting State = iota + 1
	StateOpen
	StateClosed
	StateReconnecting
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	case StateReconnecting:
		return "reconnecting"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}
