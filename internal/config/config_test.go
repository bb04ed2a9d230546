package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q, want warn", cfg.Log.Level)
	}
	if cfg.Log.Format != "console" {
		t.Errorf("Log.Format = %q, want console", cfg.Log.Format)
	}
	if cfg.Device.Timeout.Duration() != 10*time.Second {
		t.Errorf("Device.Timeout = %v, want 10s", cfg.Device.Timeout.Duration())
	}
	if cfg.Discovery.Driver != "zeroconf" {
		t.Errorf("Discovery.Driver = %q, want zeroconf", cfg.Discovery.Driver)
	}
	if cfg.Discovery.Service != "_elg._tcp" {
		t.Errorf("Discovery.Service = %q, want _elg._tcp", cfg.Discovery.Service)
	}
	if cfg.Discovery.Domain != "local." {
		t.Errorf("Discovery.Domain = %q, want local.", cfg.Discovery.Domain)
	}
	if cfg.Discovery.WaitWindow.Duration() != 5*time.Second {
		t.Errorf("Discovery.WaitWindow = %v, want 5s", cfg.Discovery.WaitWindow.Duration())
	}
	if cfg.Discovery.MaxWindows != 3 {
		t.Errorf("Discovery.MaxWindows = %d, want 3", cfg.Discovery.MaxWindows)
	}
}

func TestLoadOverrides(t *testing.T) {
	path := writeConfig(t, `
log:
  level: debug
  format: json
registry:
  path: /tmp/other-lights.json
device:
  timeout: 2s
discovery:
  driver: mdns
  wait_window: 250ms
  max_windows: 5
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}
	if cfg.Log.Format != "json" {
		t.Errorf("Log.Format = %q, want json", cfg.Log.Format)
	}
	if cfg.Registry.Path != "/tmp/other-lights.json" {
		t.Errorf("Registry.Path = %q, want /tmp/other-lights.json", cfg.Registry.Path)
	}
	if cfg.Device.Timeout.Duration() != 2*time.Second {
		t.Errorf("Device.Timeout = %v, want 2s", cfg.Device.Timeout.Duration())
	}
	if cfg.Discovery.Driver != "mdns" {
		t.Errorf("Discovery.Driver = %q, want mdns", cfg.Discovery.Driver)
	}
	if cfg.Discovery.WaitWindow.Duration() != 250*time.Millisecond {
		t.Errorf("Discovery.WaitWindow = %v, want 250ms", cfg.Discovery.WaitWindow.Duration())
	}
	if cfg.Discovery.MaxWindows != 5 {
		t.Errorf("Discovery.MaxWindows = %d, want 5", cfg.Discovery.MaxWindows)
	}

	// Unset sections still get their defaults.
	if cfg.Discovery.Service != "_elg._tcp" {
		t.Errorf("Discovery.Service = %q, want the default", cfg.Discovery.Service)
	}
}

func TestLoadExpandsEnvVars(t *testing.T) {
	t.Setenv("KEYLIGHTCTL_TEST_REGISTRY", "/tmp/from-env.json")

	path := writeConfig(t, `
registry:
  path: ${KEYLIGHTCTL_TEST_REGISTRY}
log:
  level: ${KEYLIGHTCTL_TEST_MISSING:info}
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Registry.Path != "/tmp/from-env.json" {
		t.Errorf("Registry.Path = %q, want the env value", cfg.Registry.Path)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want the fallback default", cfg.Log.Level)
	}
}

func TestLoadBadYAML(t *testing.T) {
	path := writeConfig(t, "log: [not a map")
	if _, err := Load(path); err == nil {
		t.Error("Load() error = nil, want parse error")
	}
}

func TestLoadBadDuration(t *testing.T) {
	path := writeConfig(t, "device:\n  timeout: soon\n")
	if _, err := Load(path); err == nil {
		t.Error("Load() error = nil, want duration error")
	}
}
