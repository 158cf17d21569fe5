package securechannel

// State is the lifecycle state of a Channel.
type State int32

// Channel states.
const (
	// StateUnconnected is the initial state, before a socket exists.
	StateUnconnected State = iota

	// StateSocketBound means a UDP socket is connected to the bridge.
	StateSocketBound

	// StateHandshakeInFlight means the DTLS handshake is running.
	StateHandshakeInFlight

	// StateEstablished means frames can be sent.
	StateEstablished

	// StateClosed means Close was called. Terminal.
	StateClosed

	// StateFailed means setup failed. Terminal.
	StateFailed
)

var stateNames = [...]string{
	StateUnconnected:       "unconnected",
	StateSocketBound:       "socket_bound",
	StateHandshakeInFlight: "handshake_in_flight",
	StateEstablished:       "established",
	StateClosed:            "closed",
	StateFailed:            "failed",
}

// String returns the state name.
func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s == StateClosed || s == StateFailed
}
