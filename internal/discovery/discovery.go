package discovery

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/enbility/zeroconf/v2"
)

// Service browsing constants.
const (
	ServiceType = "_hue._tcp"
	Domain      = "local."

	// DefaultTimeout bounds FindBridge when Config.Timeout is zero.
	DefaultTimeout = 5 * time.Second
)

// ErrNoBridge indicates no bridge answered before the timeout.
var ErrNoBridge = errors.New("discovery: no bridge found")

// Config holds browse settings.
type Config struct {
	// Timeout bounds the browse (default DefaultTimeout).
	Timeout time.Duration

	// Interface restricts browsing to one network interface by name.
	Interface string

	// BridgeID selects a specific bridge (case-insensitive). Empty accepts
	// the first bridge found.
	BridgeID string
}

// Bridge is one discovered bridge.
type Bridge struct {
	Instance  string
	Host      string
	ID        string
	Model     string
	Addresses []net.IP
}

// Address returns the preferred address, IPv4 first.
func (b Bridge) Address() string {
	for _, ip := range b.Addresses {
		if ip.To4() != nil {
			return ip.String()
		}
	}
	if len(b.Addresses) > 0 {
		return b.Addresses[0].String()
	}
	return ""
}

// FindBridge browses for the first matching bridge.
//
// Returns:
//   - Bridge: First bridge with at least one address
//   - error: ErrNoBridge on timeout, or a browse error
func FindBridge(ctx context.Context, cfg Config) (Bridge, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	opts, err := browseOptions(cfg.Interface)
	if err != nil {
		return Bridge{}, err
	}

	entries := make(chan *zeroconf.ServiceEntry)
	removed := make(chan *zeroconf.ServiceEntry)
	browseErr := make(chan error, 1)
	go func() {
		browseErr <- zeroconf.Browse(ctx, ServiceType, Domain, entries, removed, opts...)
	}()

	for {
		select {
		case entry, ok := <-entries:
			if !ok {
				entries = nil
				continue
			}
			b, ok := bridgeFromEntry(entry)
			if !ok || !matchesID(b, cfg.BridgeID) {
				continue
			}
			return b, nil

		case <-removed:
			// Only the first answer matters.

		case err := <-browseErr:
			if err != nil && ctx.Err() == nil {
				return Bridge{}, fmt.Errorf("discovery: browse %s: %w", ServiceType, err)
			}
			browseErr = nil

		case <-ctx.Done():
			return Bridge{}, fmt.Errorf("%w within %s", ErrNoBridge, timeout)
		}
	}
}

func browseOptions(iface string) ([]zeroconf.ClientOption, error) {
	if iface == "" {
		return nil, nil
	}
	ifi, err := net.InterfaceByName(iface)
	if err != nil {
		return nil, fmt.Errorf("discovery: interface %q: %w", iface, err)
	}
	return []zeroconf.ClientOption{zeroconf.SelectIfaces([]net.Interface{*ifi})}, nil
}

// bridgeFromEntry converts a zeroconf entry. Entries without addresses are
// rejected.
func bridgeFromEntry(entry *zeroconf.ServiceEntry) (Bridge, bool) {
	if entry == nil {
		return Bridge{}, false
	}
	addrs := make([]net.IP, 0, len(entry.AddrIPv4)+len(entry.AddrIPv6))
	addrs = append(addrs, entry.AddrIPv4...)
	addrs = append(addrs, entry.AddrIPv6...)
	if len(addrs) == 0 {
		return Bridge{}, false
	}

	txt := parseTXT(entry.Text)
	return Bridge{
		Instance:  entry.Instance,
		Host:      strings.TrimSuffix(entry.HostName, "."),
		ID:        txt["bridgeid"],
		Model:     txt["modelid"],
		Addresses: addrs,
	}, true
}

func parseTXT(records []string) map[string]string {
	out := make(map[string]string, len(records))
	for _, r := range records {
		k, v, _ := strings.Cut(r, "=")
		out[strings.ToLower(k)] = v
	}
	return out
}

func matchesID(b Bridge, id string) bool {
	return id == "" || strings.EqualFold(b.ID, id)
}
