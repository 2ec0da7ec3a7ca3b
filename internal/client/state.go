package client

// ConnectionState is the lifecycle phase of a stream session.
type ConnectionState int

const (
	// StateDisconnected means no transport is open and none is scheduled.
	StateDisconnected ConnectionState = iota
	// StateConnecting means the first transport attempt is in flight.
	StateConnecting
	// StateConnected means a transport is open and streaming.
	StateConnected
	// StateReconnecting means a retry is pending or in flight after an
	// unexpected close.
	StateReconnecting
)

// String returns the lowercase state name.
func (s ConnectionState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateReconnecting:
		return "reconnecting"
	default:
		return "disconnected"
	}
}

// Active reports whether the state represents a live or pending connection.
func (s ConnectionState) Active() bool {
	return s == StateConnecting || s == StateConnected || s == StateReconnecting
}
