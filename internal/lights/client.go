package lights

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/mdlayher/keylight"
	"github.com/rs/zerolog"
)

// ErrNoLights reports a device that answered but exposes zero lights.
var ErrNoLights = errors.New("no lights found on device")

// Status is the state of the first light on a device. Temperature is in
// Kelvin; the device's native unit exists only on the wire and the API
// client converts both ways.
type Status struct {
	On          bool
	Brightness  int
	Temperature int
}

// FriendlyStatus is a Status rendered for humans: power as "on"/"off",
// brightness as a percentage, temperature in Kelvin.
type FriendlyStatus struct {
	On          string `json:"on"`
	Brightness  string `json:"brightness"`
	Temperature string `json:"temperature"`
}

// Friendly converts s for display.
func (s Status) Friendly() FriendlyStatus {
	on := "off"
	if s.On {
		on = "on"
	}

	return FriendlyStatus{
		On:          on,
		Brightness:  strconv.Itoa(s.Brightness) + "%",
		Temperature: strconv.Itoa(s.Temperature) + "K",
	}
}

// StatusChange is a partial update to a light. Nil fields are left as the
// light has them. Temperature is in Kelvin and gets clamped to the
// MinKelvin-MaxKelvin range before the write.
type StatusChange struct {
	On          *bool
	Brightness  *int
	Temperature *int
}

// Empty reports whether the change would alter nothing.
func (ch StatusChange) Empty() bool {
	return ch.On == nil && ch.Brightness == nil && ch.Temperature == nil
}

// Info is the device metadata reported by the accessory-info endpoint.
type Info struct {
	ProductName         string   `json:"productName"`
	HardwareBoardType   int      `json:"hardwareBoardType"`
	FirmwareBuildNumber int      `json:"firmwareBuildNumber"`
	FirmwareVersion     string   `json:"firmwareVersion"`
	SerialNumber        string   `json:"serialNumber"`
	DisplayName         string   `json:"displayName"`
	Features            []string `json:"features"`
}

// Client talks to light control APIs. It caches one API client per location
// and shares a single HTTP client between them, so it is safe for concurrent
// use.
type Client struct {
	httpc *http.Client
	log   zerolog.Logger

	mu      sync.Mutex
	clients map[string]*keylight.Client
}

// NewClient creates a Client whose requests time out after timeout.
func NewClient(timeout time.Duration, log zerolog.Logger) *Client {
	return &Client{
		httpc:   &http.Client{Timeout: timeout},
		log:     log,
		clients: make(map[string]*keylight.Client),
	}
}

// Status fetches the state of the first light at location.
func (c *Client) Status(ctx context.Context, location string) (Status, error) {
	kc, err := c.device(location)
	if err != nil {
		return Status{}, err
	}

	ll, err := kc.Lights(ctx)
	if err != nil {
		return Status{}, fmt.Errorf("lights %s: %w", location, err)
	}
	if len(ll) == 0 {
		return Status{}, fmt.Errorf("%w %s", ErrNoLights, location)
	}

	l := ll[0]
	return Status{On: l.On, Brightness: l.Brightness, Temperature: l.Temperature}, nil
}

// SetStatus applies a partial update to the light at location and returns the
// resulting state. Unspecified fields keep their current values, which means
// every update is a read-modify-write.
func (c *Client) SetStatus(ctx context.Context, location string, change StatusChange) (Status, error) {
	return c.modify(ctx, location, func(l *keylight.Light) {
		if change.On != nil {
			l.On = *change.On
		}
		if change.Brightness != nil {
			l.Brightness = *change.Brightness
		}
		if change.Temperature != nil {
			l.Temperature = *change.Temperature
		}
	})
}

// Toggle flips the power state of the light at location.
func (c *Client) Toggle(ctx context.Context, location string) (Status, error) {
	return c.modify(ctx, location, func(l *keylight.Light) {
		l.On = !l.On
	})
}

// AdjustBrightness shifts brightness by delta percentage points.
func (c *Client) AdjustBrightness(ctx context.Context, location string, delta int) (Status, error) {
	return c.modify(ctx, location, func(l *keylight.Light) {
		l.Brightness += delta
	})
}

// AdjustTemperature shifts colour temperature by delta in native device
// units, where positive is warmer. The API client only speaks Kelvin, so
// the step is taken on the mired scale and converted back.
func (c *Client) AdjustTemperature(ctx context.Context, location string, delta int) (Status, error) {
	return c.modify(ctx, location, func(l *keylight.Light) {
		t := KelvinToTemperature(l.Temperature) + delta
		if t < MinTemperature {
			t = MinTemperature
		}
		if t > MaxTemperature {
			t = MaxTemperature
		}
		l.Temperature = TemperatureToKelvin(t)
	})
}

// Info fetches device metadata from the light at location. The API client
// does not expose the features list, so the accessory-info document is
// decoded directly.
func (c *Client) Info(ctx context.Context, location string) (Info, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://"+location+"/elgato/accessory-info", nil)
	if err != nil {
		return Info{}, fmt.Errorf("accessory info %s: %w", location, err)
	}

	res, err := c.httpc.Do(req)
	if err != nil {
		return Info{}, fmt.Errorf("accessory info %s: %w", location, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return Info{}, fmt.Errorf("accessory info %s: unexpected status %s", location, res.Status)
	}

	var info Info
	if err := json.NewDecoder(res.Body).Decode(&info); err != nil {
		return Info{}, fmt.Errorf("accessory info %s: %w", location, err)
	}

	return info, nil
}

// DisplayName fetches just the user-assigned name of the light at location.
func (c *Client) DisplayName(ctx context.Context, location string) (string, error) {
	info, err := c.Info(ctx, location)
	if err != nil {
		return "", err
	}
	return info.DisplayName, nil
}

// modify fetches the current lights at location, lets f mutate the first
// one, clamps the result into the ranges the device accepts, and writes it
// back.
func (c *Client) modify(ctx context.Context, location string, f func(*keylight.Light)) (Status, error) {
	kc, err := c.device(location)
	if err != nil {
		return Status{}, err
	}

	ll, err := kc.Lights(ctx)
	if err != nil {
		return Status{}, fmt.Errorf("lights %s: %w", location, err)
	}
	if len(ll) == 0 {
		return Status{}, fmt.Errorf("%w %s", ErrNoLights, location)
	}

	l := ll[0]
	f(l)

	if l.Brightness < MinBrightness {
		l.Brightness = MinBrightness
	}
	if l.Brightness > MaxBrightness {
		l.Brightness = MaxBrightness
	}
	if l.Temperature < MinKelvin {
		l.Temperature = MinKelvin
	}
	if l.Temperature > MaxKelvin {
		l.Temperature = MaxKelvin
	}

	if err := kc.SetLights(ctx, ll); err != nil {
		return Status{}, fmt.Errorf("set lights %s: %w", location, err)
	}

	c.log.Debug().
		Str("light", location).
		Bool("on", l.On).
		Int("brightness", l.Brightness).
		Int("temperature", l.Temperature).
		Msg("applied state")

	return Status{On: l.On, Brightness: l.Brightness, Temperature: l.Temperature}, nil
}

// device returns the cached API client for location, creating it on first
// use.
func (c *Client) device(location string) (*keylight.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if kc, ok := c.clients[location]; ok {
		return kc, nil
	}

	kc, err := keylight.NewClient("http://"+location, c.httpc)
	if err != nil {
		return nil, fmt.Errorf("client for %s: %w", location, err)
	}
	c.clients[location] = kc

	return kc, nil
}
