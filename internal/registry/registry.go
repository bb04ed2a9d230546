package registry

import (
	"context"

	"github.com/rs/zerolog"

	"keylightctl/internal/lights"
)

// Finder locates lights on the network. It is how the registry falls back to
// discovery when it is asked for all lights but knows of none.
type Finder interface {
	Find(ctx context.Context) ([]lights.Light, error)
}

// Registry resolves light references against the persisted light list. It
// loads the list lazily and at most once, and never writes it back: only
// discovery updates the file.
type Registry struct {
	store  *Store
	finder Finder
	log    zerolog.Logger

	lights []lights.Light
	loaded bool
}

// New creates a Registry over store, using finder when no lights are known.
func New(store *Store, finder Finder, log zerolog.Logger) *Registry {
	return &Registry{store: store, finder: finder, log: log}
}

// Resolve turns raw reference tokens into concrete lights.
//
// With refs given, each token must resolve: numbers select from the
// persisted list by position, anything else must be a valid IP address with
// an optional port. One bad token fails the whole call, so a command never
// runs against a partial target list. The resolved set replaces the
// in-memory list, making it what later calls see.
//
// With no refs, Resolve returns every known light, falling back to a network
// search when the registry is empty.
func (r *Registry) Resolve(ctx context.Context, refs []string) ([]lights.Light, error) {
	r.load()

	if len(refs) == 0 {
		if len(r.lights) > 0 {
			return copyLights(r.lights), nil
		}

		found, err := r.finder.Find(ctx)
		if err != nil {
			// The finder reports lights it found even when it could not
			// persist them.
			if len(found) == 0 || ctx.Err() != nil {
				return nil, err
			}
			r.log.Warn().Err(err).Msg("continuing with unsaved lights")
		}
		r.lights = found
		return copyLights(r.lights), nil
	}

	resolved := make([]lights.Light, 0, len(refs))
	for _, token := range refs {
		ref, err := lights.ParseRef(token, len(r.lights))
		if err != nil {
			return nil, err
		}

		if ref.Index > 0 {
			resolved = append(resolved, r.lights[ref.Index-1])
			continue
		}
		resolved = append(resolved, *ref.Light)
	}

	r.lights = resolved
	return copyLights(r.lights), nil
}

// load pulls the persisted list into memory on first use. Any read failure,
// including the file not existing yet, leaves the registry empty.
func (r *Registry) load() {
	if r.loaded {
		return
	}
	r.loaded = true

	ll, err := r.store.Load()
	if err != nil {
		r.log.Debug().Err(err).Str("path", r.store.Path()).Msg("no stored lights")
		return
	}
	r.lights = ll
}

func copyLights(ll []lights.Light) []lights.Light {
	return append([]lights.Light(nil), ll...)
}
