package lights

import (
	"errors"
	"fmt"
	"net"
	"net/netip"
	"strconv"
)

// DefaultPort is the well-known control port Elgato lights listen on. It is
// assumed whenever a reference names an address without a port.
const DefaultPort = 9123

var (
	// ErrInvalidAddress reports a reference that is neither an in-range light
	// number nor a syntactically valid IP address.
	ErrInvalidAddress = errors.New("invalid light address")
	// ErrInvalidPort reports an address reference whose port segment is not a
	// valid port number.
	ErrInvalidPort = errors.New("invalid light port")
)

// Light is one controllable light: a display name plus the host:port its
// control API lives at. The on-disk JSON key for Location is "light", kept
// for compatibility with existing registry files.
type Light struct {
	Name     string `json:"name"`
	Location string `json:"light"`
}

// Ref is a parsed light reference. Index is a 1-based registry position when
// positive; otherwise Light holds the address form the token described.
type Ref struct {
	Index int
	Light *Light
}

// ParseRef parses a single raw reference token. A token that reads as an
// integer within [1, registrySize] refers to a registry entry; anything else
// must be an IP address, optionally with a port. Out-of-range integers fall
// through to address parsing, so a token like "0" fails with
// ErrInvalidAddress rather than a range error.
//
// Accepted address forms are IP literals only, never hostnames: "10.0.0.5",
// "10.0.0.5:9123", "::1", "[::1]:9123". A missing or empty port means
// DefaultPort. The resulting Location is canonicalized with
// net.JoinHostPort; Name keeps the token verbatim.
func ParseRef(token string, registrySize int) (Ref, error) {
	if n, err := strconv.Atoi(token); err == nil && n >= 1 && n <= registrySize {
		return Ref{Index: n}, nil
	}

	if addr, err := netip.ParseAddr(token); err == nil {
		return Ref{Light: &Light{
			Name:     token,
			Location: net.JoinHostPort(addr.String(), strconv.Itoa(DefaultPort)),
		}}, nil
	}

	host, portStr, err := net.SplitHostPort(token)
	if err != nil {
		return Ref{}, fmt.Errorf("%w: %q", ErrInvalidAddress, token)
	}
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return Ref{}, fmt.Errorf("%w: %q", ErrInvalidAddress, token)
	}

	port := DefaultPort
	if portStr != "" {
		port, err = strconv.Atoi(portStr)
		if err != nil || port < 1 || port > 65535 {
			return Ref{}, fmt.Errorf("%w: %q", ErrInvalidPort, token)
		}
	}

	return Ref{Light: &Light{
		Name:     token,
		Location: net.JoinHostPort(addr.String(), strconv.Itoa(port)),
	}}, nil
}
