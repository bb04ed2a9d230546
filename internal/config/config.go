package config

import (
	"os"
	"regexp"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

// Config is the tool configuration. Every field has a working default, so
// running without a config file is the normal case.
type Config struct {
	Log       LogConfig       `yaml:"log"`
	Registry  RegistryConfig  `yaml:"registry"`
	Device    DeviceConfig    `yaml:"device"`
	Discovery DiscoveryConfig `yaml:"discovery"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level   string `yaml:"level"`    // trace, debug, info, warn, error
	Format  string `yaml:"format"`   // console or json
	NoColor bool   `yaml:"no_color"` // disable colour in console format
}

// RegistryConfig contains settings for the persisted light list.
type RegistryConfig struct {
	Path string `yaml:"path"` // empty means the standard config location
}

// DeviceConfig contains settings for talking to lights.
type DeviceConfig struct {
	Timeout Duration `yaml:"timeout"` // per-request HTTP timeout
}

// DiscoveryConfig contains settings for finding lights on the network.
type DiscoveryConfig struct {
	Driver     string   `yaml:"driver"`      // zeroconf or mdns
	Service    string   `yaml:"service"`     // mDNS service to look for
	Domain     string   `yaml:"domain"`      // mDNS domain
	WaitWindow Duration `yaml:"wait_window"` // how long each listening window lasts
	MaxWindows int      `yaml:"max_windows"` // non-interactive window limit
}

// Duration is a wrapper around time.Duration for YAML unmarshalling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// DefaultPath returns the standard location of the config file, creating
// parent directories as needed.
func DefaultPath() (string, error) {
	return xdg.ConfigFile("keylightctl/config.yaml")
}

// Load reads the configuration file at path, or the standard location when
// path is empty. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
	} else {
		expanded := expandEnvVars(string(data))
		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, err
		}
	}

	// Set defaults
	if cfg.Log.Level == "" {
		cfg.Log.Level = "warn"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}

	if cfg.Device.Timeout == 0 {
		cfg.Device.Timeout = Duration(10 * time.Second)
	}

	if cfg.Discovery.Driver == "" {
		cfg.Discovery.Driver = "zeroconf"
	}
	if cfg.Discovery.Service == "" {
		cfg.Discovery.Service = "_elg._tcp"
	}
	if cfg.Discovery.Domain == "" {
		cfg.Discovery.Domain = "local."
	}
	if cfg.Discovery.WaitWindow == 0 {
		cfg.Discovery.WaitWindow = Duration(5 * time.Second)
	}
	if cfg.Discovery.MaxWindows == 0 {
		cfg.Discovery.MaxWindows = 3
	}

	return &cfg, nil
}

// expandEnvVars expands environment variables in the format ${VAR} or
// ${VAR:default}.
func expandEnvVars(input string) string {
	re := regexp.MustCompile(`\$\{([^}:]+)(?::([^}]*))?\}`)

	return re.ReplaceAllStringFunc(input, func(match string) string {
		parts := re.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		varName := parts[1]
		defaultVal := ""
		if len(parts) >= 3 {
			defaultVal = parts[2]
		}

		if val := os.Getenv(varName); val != "" {
			return val
		}
		return defaultVal
	})
}
