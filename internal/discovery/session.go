package discovery

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"keylightctl/internal/lights"
	"keylightctl/internal/registry"
)

// Event is one service announcement from a Browser.
type Event struct {
	Host string
	Port int
}

// Location returns the host:port the announced service listens on.
func (e Event) Location() string {
	return net.JoinHostPort(e.Host, strconv.Itoa(e.Port))
}

// Browser streams service announcements onto events until ctx is cancelled,
// then returns. The session owns the channel; a Browser never closes it.
type Browser interface {
	Browse(ctx context.Context, events chan<- Event) error
}

// Namer resolves the user-assigned display name of the light at a location.
// A light that cannot answer is dropped from the results.
type Namer interface {
	DisplayName(ctx context.Context, location string) (string, error)
}

// Options control how a Session listens.
type Options struct {
	// Window is how long each listening window lasts before the session
	// decides whether to stop.
	Window time.Duration
	// MaxWindows bounds a non-interactive session: it gives up after this
	// many windows even when nothing was found.
	MaxWindows int
	// In and Out carry the interactive prompt. They default to stdin and
	// stdout.
	In  io.Reader
	Out io.Writer
}

// Session is one discovery run: it browses for lights, names each one it
// hears about, and replaces the stored registry with whatever it found.
type Session struct {
	browser    Browser
	namer      Namer
	store      *registry.Store
	window     time.Duration
	maxWindows int
	in         io.Reader
	log        zerolog.Logger

	mu    sync.Mutex
	out   io.Writer
	found []lights.Light
}

// NewSession creates a Session that browses with browser and names lights
// with namer. Results overwrite the registry in store.
func NewSession(browser Browser, namer Namer, store *registry.Store, opts Options, log zerolog.Logger) *Session {
	if opts.Window <= 0 {
		opts.Window = 5 * time.Second
	}
	if opts.MaxWindows <= 0 {
		opts.MaxWindows = 3
	}
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}

	return &Session{
		browser:    browser,
		namer:      namer,
		store:      store,
		window:     opts.Window,
		maxWindows: opts.MaxWindows,
		in:         opts.In,
		out:        opts.Out,
		log:        log.With().Str("session", uuid.New().String()).Logger(),
	}
}

// Run listens for lights in windows of the configured length. Interactive
// sessions ask after every window whether all lights have been found and keep
// listening until the user agrees; non-interactive sessions stop after the
// first window that found anything, or after MaxWindows windows.
//
// If anything was found, the registry file is overwritten with the results.
// A failed save still returns the lights along with the error, so callers can
// keep working with them.
func (s *Session) Run(ctx context.Context, interactive bool) ([]lights.Light, error) {
	s.printf("Finding Lights\n")
	s.log.Debug().
		Bool("interactive", interactive).
		Dur("window", s.window).
		Msg("discovery started")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan Event, 8)
	go func() {
		defer close(events)
		if err := s.browser.Browse(ctx, events); err != nil && ctx.Err() == nil {
			s.log.Warn().Err(err).Msg("browse failed")
		}
	}()

	collected := make(chan struct{})
	go func() {
		defer close(collected)
		for ev := range events {
			s.add(ctx, ev)
		}
	}()

	// stop cancels browsing and waits for the collector to drain, so no
	// result is appended after Run moves on.
	stop := func() {
		cancel()
		<-collected
	}

	prompt := bufio.NewScanner(s.in)
	for window := 1; ; window++ {
		select {
		case <-time.After(s.window):
		case <-ctx.Done():
			stop()
			return s.results(), ctx.Err()
		}

		if interactive {
			s.printf("Found %d lights, is that all of them? [Y/n] ", s.count())
			if confirmed(prompt) {
				break
			}
		} else if s.count() > 0 || window >= s.maxWindows {
			break
		}

		s.printf("Looking for more lights\n")
	}
	stop()

	found := s.results()
	s.log.Debug().Int("lights", len(found)).Msg("discovery finished")

	if len(found) > 0 {
		if err := s.store.Save(found); err != nil {
			return found, fmt.Errorf("save lights: %w", err)
		}
	}
	return found, nil
}

// Find runs a non-interactive session. It satisfies registry.Finder.
func (s *Session) Find(ctx context.Context) ([]lights.Light, error) {
	return s.Run(ctx, false)
}

// add records one announced light. Lights that do not answer an info request
// are logged and skipped rather than failing the whole session. Events that
// arrive after the session was stopped are dropped.
func (s *Session) add(ctx context.Context, ev Event) {
	location := ev.Location()
	if ctx.Err() != nil {
		s.log.Debug().Str("light", location).Msg("dropping light announced during shutdown")
		return
	}

	name, err := s.namer.DisplayName(ctx, location)
	if err != nil {
		if ctx.Err() != nil {
			s.log.Debug().Err(err).Str("light", location).Msg("dropping light announced during shutdown")
			return
		}
		s.log.Warn().Err(err).Str("light", location).Msg("skipping unresponsive light")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.found = append(s.found, lights.Light{Name: name, Location: location})
	fmt.Fprintf(s.out, "%s found at: %s\n", name, location)
}

func (s *Session) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.found)
}

func (s *Session) results() []lights.Light {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]lights.Light(nil), s.found...)
}

// printf writes to the session output under the same lock the collector
// uses, so prompts and found-light lines never interleave mid-line.
func (s *Session) printf(format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.out, format, args...)
}

// confirmed reads one prompt answer. Empty input and y/ye/yes count as yes,
// as does end of input.
func confirmed(scanner *bufio.Scanner) bool {
	if !scanner.Scan() {
		return true
	}
	switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
	case "", "y", "ye", "yes":
		return true
	}
	return false
}
