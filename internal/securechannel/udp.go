package securechannel

import (
	"net"
	"sync"

	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"
)

// connectedUDP presents a connected UDP socket as a net.PacketConn, which is
// what the DTLS client runs over. A connected socket only receives datagrams
// from the bridge, so every read is attributed to the remote address.
type connectedUDP struct {
	*net.UDPConn
	closeOnce sync.Once
	closeErr  error
}

func dialUDP(remote *net.UDPAddr) (*connectedUDP, error) {
	conn, err := net.DialUDP("udp", nil, remote)
	if err != nil {
		return nil, err
	}
	return &connectedUDP{UDPConn: conn}, nil
}

func (c *connectedUDP) ReadFrom(p []byte) (int, net.Addr, error) {
	n, err := c.UDPConn.Read(p)
	return n, c.UDPConn.RemoteAddr(), err
}

func (c *connectedUDP) WriteTo(p []byte, _ net.Addr) (int, error) {
	return c.UDPConn.Write(p)
}

// Close closes the socket once. The DTLS layer closes it too on shutdown.
func (c *connectedUDP) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.UDPConn.Close()
	})
	return c.closeErr
}

// markDSCP sets the DiffServ code point on outgoing datagrams.
func (c *connectedUDP) markDSCP(dscp int) error {
	tos := dscp << 2
	remote, _ := c.UDPConn.RemoteAddr().(*net.UDPAddr)
	if remote != nil && remote.IP.To4() != nil {
		return ipv4.NewConn(c.UDPConn).SetTOS(tos)
	}
	return ipv6.NewConn(c.UDPConn).SetTrafficClass(tos)
}
