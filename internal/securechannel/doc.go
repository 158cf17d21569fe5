// Package securechannel owns the encrypted datagram session to a Hue bridge.
//
// A Channel is established once per program run with Connect and then
// carries entertainment frames with Send until Close. The session uses DTLS
// 1.2 with pre-shared key authentication and a single cipher suite,
// TLS_PSK_WITH_AES_128_GCM_SHA256, which is what the bridge's entertainment
// API accepts. There is no reconnection: any failure is terminal and the
// caller decides whether to exit.
//
// # State Machine
//
//	Unconnected -> SocketBound -> HandshakeInFlight -> Established -> Closed
//
// Failed is reachable from any non-terminal state. Connect returns a Channel
// only in the Established state; every resource acquired on the way (the
// identity material, the UDP socket, the DTLS connection) is released before
// Connect returns an error.
//
// # Connecting
//
// The host is resolved and each resulting address is tried in order until a
// UDP socket connects. The pre-shared key is validated before any socket is
// created, so a malformed key never puts a datagram on the wire. The
// handshake is bounded by the context passed to Connect and, when set, by
// Config.HandshakeTimeout.
//
// After the handshake, every Receive is bounded by Config.ReceiveTimeout
// (2 seconds by default). The deadline is only applied after establishment
// since the handshake runs its own retransmission timers.
//
// # Errors
//
// Setup failures wrap ErrHandshake together with a more specific cause
// (ErrInvalidKey, ErrResolve, ErrSocket). Send failures wrap ErrTransmit and
// are not retried here; the stream is loss tolerant and the caller simply
// drops the frame.
//
// # Usage
//
//	ch, err := securechannel.Connect(ctx, securechannel.Config{
//	    Host:     "192.168.1.20",
//	    Identity: "3f8a...",
//	    PSK:      "0123456789ABCDEF0123456789ABCDEF",
//	})
//	if err != nil {
//	    return err
//	}
//	defer ch.Close()
//
//	if err := ch.Send(frame); err != nil {
//	    log.Warn("frame dropped", "error", err)
//	}
package securechannel
