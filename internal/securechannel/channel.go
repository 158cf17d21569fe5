package securechannel

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pion/dtls/v3"
)

// Default settings.
const (
	// DefaultPort is the bridge entertainment streaming port.
	DefaultPort = 2100

	// DefaultReceiveTimeout bounds each Receive after establishment.
	DefaultReceiveTimeout = 2 * time.Second
)

// Logger is the logging interface used by the channel.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}

// Config holds connection settings.
type Config struct {
	// Host is the bridge hostname or IP address.
	Host string

	// Port is the bridge UDP port (default DefaultPort).
	Port int

	// Identity is the pre-shared key identity (the bridge application
	// username).
	Identity string

	// PSK is the pre-shared key as 32 hexadecimal characters.
	PSK string

	// HandshakeTimeout bounds the handshake in addition to the context
	// passed to Connect. Zero means the context alone bounds it.
	HandshakeTimeout time.Duration

	// ReceiveTimeout bounds each Receive (default DefaultReceiveTimeout).
	ReceiveTimeout time.Duration

	// DSCP is the DiffServ code point for outgoing datagrams (0-63).
	// Zero leaves the socket unmarked.
	DSCP int

	// Logger receives connection progress. Nil disables logging.
	Logger Logger
}

// Stats holds channel counters.
type Stats struct {
	DatagramsSent uint64
	BytesSent     uint64
	SendErrors    uint64
}

// Channel is an established secured session to one bridge.
//
// Thread Safety:
//   - Send and Receive may be called concurrently with each other.
//   - Close may be called from any goroutine and more than once.
type Channel struct {
	state    atomic.Int32
	conn     *dtls.Conn
	udp      *connectedUDP
	identity *Identity
	remote   *net.UDPAddr
	logger   Logger

	receiveTimeout time.Duration
	closeOnce      sync.Once

	datagramsSent atomic.Uint64
	bytesSent     atomic.Uint64
	sendErrors    atomic.Uint64
}

// Connect establishes a secured session with the bridge.
//
// The key is validated first; no socket is created for a malformed key.
// Each resolved address is tried in order until a socket connects, then the
// handshake runs synchronously. On failure every acquired resource is
// released before returning.
//
// Parameters:
//   - ctx: Bounds resolution and the handshake
//   - cfg: Connection settings
//
// Returns:
//   - *Channel: Established channel
//   - error: Wraps ErrHandshake, plus ErrInvalidKey, ErrResolve or ErrSocket
//     when the failure happened before the handshake
func Connect(ctx context.Context, cfg Config) (*Channel, error) {
	c := &Channel{logger: cfg.Logger, receiveTimeout: cfg.ReceiveTimeout}
	if c.logger == nil {
		c.logger = noopLogger{}
	}
	if c.receiveTimeout <= 0 {
		c.receiveTimeout = DefaultReceiveTimeout
	}
	port := cfg.Port
	if port == 0 {
		port = DefaultPort
	}

	var err error
	defer func() {
		if err != nil {
			c.release()
			c.state.Store(int32(StateFailed))
		}
	}()

	c.identity, err = NewIdentity(cfg.Identity, cfg.PSK)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrHandshake, err)
	}

	if err = c.bind(ctx, cfg.Host, port); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrHandshake, err)
	}
	c.setState(StateSocketBound)

	if cfg.DSCP > 0 {
		if markErr := c.udp.markDSCP(cfg.DSCP); markErr != nil {
			c.logger.Warn("dscp marking failed", "dscp", cfg.DSCP, "error", markErr)
		}
	}

	if err = c.handshake(ctx, cfg.HandshakeTimeout); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrHandshake, err)
	}
	c.setState(StateEstablished)

	c.logger.Info("secure channel established",
		"remote", c.remote.String(),
		"identity", c.identity.String(),
	)
	return c, nil
}

// bind resolves host and connects a UDP socket to the first address that
// accepts one.
func (c *Channel) bind(ctx context.Context, host string, port int) error {
	addrs, err := resolve(ctx, host)
	if err != nil {
		return err
	}

	var lastErr error
	for _, ip := range addrs {
		remote := &net.UDPAddr{IP: ip.IP, Port: port, Zone: ip.Zone}
		conn, dialErr := dialUDP(remote)
		if dialErr != nil {
			c.logger.Warn("udp connect failed, trying next address",
				"address", remote.String(), "error", dialErr)
			lastErr = dialErr
			continue
		}
		c.udp = conn
		c.remote = remote
		c.logger.Debug("udp socket connected", "address", remote.String())
		return nil
	}
	return fmt.Errorf("%w: %s: %w", ErrSocket, net.JoinHostPort(host, strconv.Itoa(port)), lastErr)
}

func resolve(ctx context.Context, host string) ([]net.IPAddr, error) {
	if host == "" {
		return nil, fmt.Errorf("%w: empty host", ErrResolve)
	}
	if ip := net.ParseIP(host); ip != nil {
		return []net.IPAddr{{IP: ip}}, nil
	}
	addrs, err := net.DefaultResolver.LookupIPAddr(ctx, host)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrResolve, host, err)
	}
	if len(addrs) == 0 {
		return nil, fmt.Errorf("%w: %s: no addresses", ErrResolve, host)
	}
	return addrs, nil
}

func (c *Channel) handshake(ctx context.Context, timeout time.Duration) error {
	conn, err := dtls.Client(c.udp, c.remote, &dtls.Config{
		PSK:             c.identity.pskFor,
		PSKIdentityHint: []byte(c.identity.Name()),
		CipherSuites:    []dtls.CipherSuiteID{dtls.TLS_PSK_WITH_AES_128_GCM_SHA256},
	})
	if err != nil {
		return err
	}
	c.conn = conn
	c.setState(StateHandshakeInFlight)

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	started := time.Now()
	if err := conn.HandshakeContext(ctx); err != nil {
		return err
	}
	c.logger.Debug("handshake complete", "duration", time.Since(started))
	return nil
}

// State returns the current lifecycle state.
func (c *Channel) State() State {
	return State(c.state.Load())
}

func (c *Channel) setState(s State) {
	c.state.Store(int32(s))
}

// RemoteAddr returns the bridge address the channel is connected to.
func (c *Channel) RemoteAddr() net.Addr {
	return c.remote
}

// Send writes one frame as a single secured record.
//
// Failures are not retried.
//
// Returns:
//   - error: ErrTransmit (wrapping ErrNotEstablished after Close)
func (c *Channel) Send(frame []byte) error {
	if c.State() != StateEstablished {
		c.sendErrors.Add(1)
		return fmt.Errorf("%w: %w", ErrTransmit, ErrNotEstablished)
	}
	n, err := c.conn.Write(frame)
	if err != nil {
		c.sendErrors.Add(1)
		return fmt.Errorf("%w: %w", ErrTransmit, err)
	}
	c.datagramsSent.Add(1)
	c.bytesSent.Add(uint64(n))
	return nil
}

// Receive reads one record from the bridge into p, waiting at most the
// receive timeout.
//
// Returns:
//   - int: Bytes read
//   - error: ErrReceiveTimeout, ErrNotEstablished or a transport error
func (c *Channel) Receive(p []byte) (int, error) {
	if c.State() != StateEstablished {
		return 0, ErrNotEstablished
	}
	if err := c.conn.SetReadDeadline(time.Now().Add(c.receiveTimeout)); err != nil {
		return 0, err
	}
	n, err := c.conn.Read(p)
	if err != nil {
		var netErr net.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
			return n, fmt.Errorf("%w: %w", ErrReceiveTimeout, err)
		}
		return n, err
	}
	return n, nil
}

// Stats returns a snapshot of the channel counters.
func (c *Channel) Stats() Stats {
	return Stats{
		DatagramsSent: c.datagramsSent.Load(),
		BytesSent:     c.bytesSent.Load(),
		SendErrors:    c.sendErrors.Load(),
	}
}

// Close shuts down the session and zeroes the key material.
// Calling Close again is a no-op.
func (c *Channel) Close() error {
	var err error
	c.closeOnce.Do(func() {
		err = c.release()
		c.setState(StateClosed)
		c.logger.Info("secure channel closed",
			"datagrams_sent", c.datagramsSent.Load(),
			"send_errors", c.sendErrors.Load(),
		)
	})
	return err
}

// release frees the DTLS connection, the socket and the identity. It is
// safe on a partially constructed channel.
func (c *Channel) release() error {
	var errs []error
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if c.udp != nil {
		// Already closed by the DTLS layer when conn was set up.
		if err := c.udp.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			errs = append(errs, err)
		}
	}
	if c.identity != nil {
		c.identity.Zero()
	}
	return errors.Join(errs...)
}
