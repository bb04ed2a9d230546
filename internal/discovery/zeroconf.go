package discovery

import (
	"context"
	"fmt"

	"github.com/grandcat/zeroconf"
)

// ZeroconfBrowser listens passively for mDNS service announcements. Each
// service is reported once, as it announces itself, which suits sessions
// that keep listening until told to stop.
type ZeroconfBrowser struct {
	Service string
	Domain  string
}

// Browse reports announcements until ctx is cancelled.
func (b *ZeroconfBrowser) Browse(ctx context.Context, events chan<- Event) error {
	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return fmt.Errorf("creating mDNS resolver: %w", err)
	}

	entries := make(chan *zeroconf.ServiceEntry)
	forwarded := make(chan struct{})
	go func() {
		defer close(forwarded)
		for entry := range entries {
			var host string
			if len(entry.AddrIPv4) > 0 {
				host = entry.AddrIPv4[0].String()
			} else if len(entry.AddrIPv6) > 0 {
				host = entry.AddrIPv6[0].String()
			}
			if host == "" {
				continue
			}
			events <- Event{Host: host, Port: entry.Port}
		}
	}()

	// Browse returns immediately; the resolver closes entries once ctx is
	// done or browsing fails, which ends the forwarder. Waiting on the
	// forwarder before returning keeps every send to events inside this call.
	if err := resolver.Browse(ctx, b.Service, b.Domain, entries); err != nil {
		<-forwarded
		return fmt.Errorf("browsing for lights: %w", err)
	}

	<-ctx.Done()
	<-forwarded
	return nil
}
