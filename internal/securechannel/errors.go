package securechannel

import "errors"

// Setup errors. All of them are returned wrapped with ErrHandshake.
var (
	// ErrHandshake indicates the session could not be established.
	ErrHandshake = errors.New("securechannel: handshake failed")

	// ErrInvalidKey indicates an empty identity or a pre-shared key that is
	// not 32 hexadecimal characters.
	ErrInvalidKey = errors.New("securechannel: invalid identity or key")

	// ErrResolve indicates the bridge host could not be resolved.
	ErrResolve = errors.New("securechannel: host not found")

	// ErrSocket indicates no UDP socket could be connected to any resolved
	// address.
	ErrSocket = errors.New("securechannel: socket connect failed")
)

// Steady state errors.
var (
	// ErrTransmit indicates a frame could not be sent.
	ErrTransmit = errors.New("securechannel: transmit failed")

	// ErrNotEstablished indicates an operation on a channel that is not in
	// the Established state.
	ErrNotEstablished = errors.New("securechannel: channel not established")

	// ErrReceiveTimeout indicates no datagram arrived within the receive
	// timeout.
	ErrReceiveTimeout = errors.New("securechannel: receive timeout")
)
