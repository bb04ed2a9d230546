package discovery

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"keylightctl/internal/lights"
	"keylightctl/internal/registry"
)

// fakeBrowser announces its scripted events immediately, then stays quiet
// until the session stops listening.
type fakeBrowser struct {
	events []Event
	err    error
}

func (b *fakeBrowser) Browse(ctx context.Context, events chan<- Event) error {
	if b.err != nil {
		return b.err
	}
	for _, ev := range b.events {
		events <- ev
	}
	<-ctx.Done()
	return nil
}

// fakeNamer answers for the locations it knows and fails for the rest.
type fakeNamer struct {
	names map[string]string
}

func (n *fakeNamer) DisplayName(ctx context.Context, location string) (string, error) {
	name, ok := n.names[location]
	if !ok {
		return "", errors.New("no answer")
	}
	return name, nil
}

func newTestSession(t *testing.T, browser Browser, namer Namer, in string) (*Session, *registry.Store, *bytes.Buffer) {
	t.Helper()

	store := registry.NewStore(filepath.Join(t.TempDir(), "lights.json"))
	out := &bytes.Buffer{}
	s := NewSession(browser, namer, store, Options{
		Window:     20 * time.Millisecond,
		MaxWindows: 3,
		In:         strings.NewReader(in),
		Out:        out,
	}, zerolog.Nop())

	return s, store, out
}

func TestRunNonInteractiveStopsAfterFirstFind(t *testing.T) {
	browser := &fakeBrowser{events: []Event{{Host: "10.0.0.5", Port: 9123}}}
	namer := &fakeNamer{names: map[string]string{"10.0.0.5:9123": "Desk"}}
	s, store, out := newTestSession(t, browser, namer, "")

	found, err := s.Run(context.Background(), false)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := lights.Light{Name: "Desk", Location: "10.0.0.5:9123"}
	if len(found) != 1 || found[0] != want {
		t.Fatalf("Run() = %+v, want [%+v]", found, want)
	}

	if !strings.Contains(out.String(), "Finding Lights") {
		t.Errorf("output missing banner:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "Desk found at: 10.0.0.5:9123") {
		t.Errorf("output missing found line:\n%s", out.String())
	}

	// A successful session rewrites the registry.
	stored, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(stored) != 1 || stored[0] != want {
		t.Errorf("stored = %+v, want [%+v]", stored, want)
	}
}

func TestRunNonInteractiveGivesUpAfterMaxWindows(t *testing.T) {
	s, store, out := newTestSession(t, &fakeBrowser{}, &fakeNamer{}, "")

	found, err := s.Run(context.Background(), false)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(found) != 0 {
		t.Errorf("Run() = %+v, want nothing", found)
	}

	// Three windows produce exactly two more-lights notices.
	if got := strings.Count(out.String(), "Looking for more lights"); got != 2 {
		t.Errorf("printed %d more-lights notices, want 2:\n%s", got, out.String())
	}

	// An empty session must not clobber the registry file.
	if _, err := store.Load(); !os.IsNotExist(err) {
		t.Errorf("Load() error = %v, want a does-not-exist error", err)
	}
}

func TestRunInteractivePromptsUntilConfirmed(t *testing.T) {
	browser := &fakeBrowser{events: []Event{{Host: "10.0.0.5", Port: 9123}}}
	namer := &fakeNamer{names: map[string]string{"10.0.0.5:9123": "Desk"}}
	s, _, out := newTestSession(t, browser, namer, "n\ny\n")

	found, err := s.Run(context.Background(), true)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(found) != 1 {
		t.Fatalf("Run() = %+v, want one light", found)
	}

	if got := strings.Count(out.String(), "is that all of them? [Y/n]"); got != 2 {
		t.Errorf("prompted %d times, want 2:\n%s", got, out.String())
	}
	if got := strings.Count(out.String(), "Looking for more lights"); got != 1 {
		t.Errorf("printed %d more-lights notices, want 1:\n%s", got, out.String())
	}
}

func TestRunInteractiveEmptyAnswerConfirms(t *testing.T) {
	browser := &fakeBrowser{events: []Event{{Host: "10.0.0.5", Port: 9123}}}
	namer := &fakeNamer{names: map[string]string{"10.0.0.5:9123": "Desk"}}
	s, _, out := newTestSession(t, browser, namer, "\n")

	if _, err := s.Run(context.Background(), true); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := strings.Count(out.String(), "is that all of them? [Y/n]"); got != 1 {
		t.Errorf("prompted %d times, want 1", got)
	}
}

func TestRunSkipsLightsThatDoNotAnswer(t *testing.T) {
	browser := &fakeBrowser{events: []Event{
		{Host: "10.0.0.5", Port: 9123},
		{Host: "10.0.0.6", Port: 9123},
	}}
	namer := &fakeNamer{names: map[string]string{"10.0.0.6:9123": "Shelf"}}
	s, _, _ := newTestSession(t, browser, namer, "")

	found, err := s.Run(context.Background(), false)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(found) != 1 || found[0].Name != "Shelf" {
		t.Errorf("Run() = %+v, want just Shelf", found)
	}
}

func TestRunReturnsLightsEvenWhenSaveFails(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	browser := &fakeBrowser{events: []Event{{Host: "10.0.0.5", Port: 9123}}}
	namer := &fakeNamer{names: map[string]string{"10.0.0.5:9123": "Desk"}}
	// The store path sits below a regular file, so saving cannot work.
	store := registry.NewStore(filepath.Join(blocker, "lights.json"))
	s := NewSession(browser, namer, store, Options{
		Window:     20 * time.Millisecond,
		MaxWindows: 3,
		In:         strings.NewReader(""),
		Out:        &bytes.Buffer{},
	}, zerolog.Nop())

	found, err := s.Run(context.Background(), false)
	if err == nil {
		t.Error("Run() error = nil, want save failure")
	}
	if len(found) != 1 {
		t.Errorf("Run() = %+v, want the found light despite the failed save", found)
	}
}

func TestRunCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s, store, _ := newTestSession(t, &fakeBrowser{events: []Event{{Host: "10.0.0.5", Port: 9123}}},
		&fakeNamer{names: map[string]string{"10.0.0.5:9123": "Desk"}}, "")

	_, err := s.Run(ctx, false)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}

	// A cancelled session never writes the registry.
	if _, err := store.Load(); !os.IsNotExist(err) {
		t.Errorf("Load() error = %v, want a does-not-exist error", err)
	}
}

// lateBrowser announces its event only after the session has stopped
// listening, the way a slow responder can during shutdown.
type lateBrowser struct {
	event Event
}

func (b *lateBrowser) Browse(ctx context.Context, events chan<- Event) error {
	<-ctx.Done()
	events <- b.event
	return nil
}

func TestRunDropsLightsAnnouncedDuringShutdown(t *testing.T) {
	browser := &lateBrowser{event: Event{Host: "10.0.0.5", Port: 9123}}
	namer := &fakeNamer{names: map[string]string{"10.0.0.5:9123": "Desk"}}
	s, store, out := newTestSession(t, browser, namer, "")

	found, err := s.Run(context.Background(), false)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(found) != 0 {
		t.Errorf("Run() = %+v, want nothing", found)
	}
	if strings.Contains(out.String(), "found at") {
		t.Errorf("late announcement still reported:\n%s", out.String())
	}
	if _, err := store.Load(); !os.IsNotExist(err) {
		t.Errorf("Load() error = %v, want a does-not-exist error", err)
	}
}

func TestFindIsNonInteractive(t *testing.T) {
	browser := &fakeBrowser{events: []Event{{Host: "10.0.0.5", Port: 9123}}}
	namer := &fakeNamer{names: map[string]string{"10.0.0.5:9123": "Desk"}}
	s, _, out := newTestSession(t, browser, namer, "")

	found, err := s.Find(context.Background())
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if len(found) != 1 {
		t.Errorf("Find() = %+v, want one light", found)
	}
	if strings.Contains(out.String(), "is that all of them?") {
		t.Errorf("Find() prompted:\n%s", out.String())
	}
}

func TestEventLocation(t *testing.T) {
	if got := (Event{Host: "10.0.0.5", Port: 9123}).Location(); got != "10.0.0.5:9123" {
		t.Errorf("Location() = %q, want 10.0.0.5:9123", got)
	}
	if got := (Event{Host: "fe80::1", Port: 9123}).Location(); got != "[fe80::1]:9123" {
		t.Errorf("Location() = %q, want [fe80::1]:9123", got)
	}
}
