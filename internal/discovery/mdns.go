package discovery

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/mdns"
)

// MDNSBrowser discovers lights with repeated one-shot multicast queries.
// Some networks answer direct queries where passive browsing hears nothing,
// so this is available as an alternative driver.
type MDNSBrowser struct {
	Service string
	Domain  string
}

// Browse runs query rounds until ctx is cancelled. Every round re-reports
// whatever answers, so results are de-duplicated by location before being
// passed on.
func (b *MDNSBrowser) Browse(ctx context.Context, events chan<- Event) error {
	seen := make(map[string]bool)

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		entries := make(chan *mdns.ServiceEntry, 10)
		drained := make(chan struct{})
		go func() {
			defer close(drained)
			for entry := range entries {
				if entry.AddrV4 == nil {
					continue
				}
				ev := Event{Host: entry.AddrV4.String(), Port: entry.Port}
				if seen[ev.Location()] {
					continue
				}
				seen[ev.Location()] = true
				events <- ev
			}
		}()

		err := mdns.Query(&mdns.QueryParam{
			Service:             b.Service,
			Domain:              strings.TrimSuffix(b.Domain, "."),
			Timeout:             3 * time.Second,
			Entries:             entries,
			DisableIPv6:         true,
			WantUnicastResponse: true,
		})
		close(entries)
		<-drained
		if err != nil {
			return fmt.Errorf("mdns query: %w", err)
		}
	}
}
