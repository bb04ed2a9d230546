package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"keylightctl/internal/config"
	"keylightctl/internal/discovery"
	"keylightctl/internal/lights"
	"keylightctl/internal/registry"
)

const version = "0.1.0"

// app holds everything the commands share. It is wired up once per run,
// after flags are parsed, so the config flag can take effect.
type app struct {
	configPath string
	verbosity  int

	log     zerolog.Logger
	client  *lights.Client
	reg     *registry.Registry
	session *discovery.Session
}

// NewRootCmd builds the keylightctl command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "keylightctl",
		Short:         "Control Elgato lights over the local network",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "path to configuration file")
	root.PersistentFlags().CountVarP(&a.verbosity, "verbose", "v", "increase log verbosity, repeatable")

	root.AddCommand(
		a.newFindCmd(),
		a.newListCmd(),
		a.newToggleCmd(),
		a.newOnCmd(),
		a.newOffCmd(),
		a.newStatusCmd(),
		a.newInfoCmd(),
		a.newBrighterCmd(),
		a.newDimmerCmd(),
		a.newWarmerCmd(),
		a.newCoolerCmd(),
		a.newSetCmd(),
	)

	return root
}

// init loads configuration and wires the client, registry and discovery
// session together.
func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	a.log = newLogger(cfg.Log, a.verbosity)

	path := cfg.Registry.Path
	if path == "" {
		path, err = registry.DefaultPath()
		if err != nil {
			return fmt.Errorf("registry path: %w", err)
		}
	}
	store := registry.NewStore(path)

	a.client = lights.NewClient(cfg.Device.Timeout.Duration(),
		a.log.With().Str("component", "lights").Logger())

	browser, err := newBrowser(cfg.Discovery)
	if err != nil {
		return err
	}
	a.session = discovery.NewSession(browser, a.client, store, discovery.Options{
		Window:     cfg.Discovery.WaitWindow.Duration(),
		MaxWindows: cfg.Discovery.MaxWindows,
		In:         cmd.InOrStdin(),
		Out:        cmd.OutOrStdout(),
	}, a.log.With().Str("component", "discovery").Logger())

	a.reg = registry.New(store, a.session,
		a.log.With().Str("component", "registry").Logger())

	return nil
}

func newBrowser(cfg config.DiscoveryConfig) (discovery.Browser, error) {
	switch cfg.Driver {
	case "zeroconf":
		return &discovery.ZeroconfBrowser{Service: cfg.Service, Domain: cfg.Domain}, nil
	case "mdns":
		return &discovery.MDNSBrowser{Service: cfg.Service, Domain: cfg.Domain}, nil
	}
	return nil, fmt.Errorf("unknown discovery driver %q", cfg.Driver)
}

func newLogger(cfg config.LogConfig, verbosity int) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	var w io.Writer = os.Stderr
	if cfg.Format == "console" {
		w = zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: "2006-01-02T15:04:05.000Z07:00",
			NoColor:    cfg.NoColor,
		}
	}

	var level zerolog.Level
	switch cfg.Level {
	case "trace":
		level = zerolog.TraceLevel
	case "debug":
		level = zerolog.DebugLevel
	case "info":
		level = zerolog.InfoLevel
	case "error":
		level = zerolog.ErrorLevel
	default:
		level = zerolog.WarnLevel
	}

	// Terminal verbosity beats the config file.
	switch {
	case verbosity >= 3:
		level = zerolog.TraceLevel
	case verbosity == 2:
		level = zerolog.DebugLevel
	case verbosity == 1:
		level = zerolog.InfoLevel
	}

	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// addLightFlag registers the repeatable --light flag commands use to pick
// their targets.
func addLightFlag(cmd *cobra.Command, refs *[]string) {
	cmd.Flags().StringArrayVar(refs, "light", nil,
		"light to target as a number (from the list command) or IP:PORT; can be given multiple times")
}

// forEach resolves refs and applies f to every resolved light, stopping at
// the first failure.
func (a *app) forEach(cmd *cobra.Command, refs []string, f func(l lights.Light) error) error {
	ll, err := a.reg.Resolve(cmd.Context(), refs)
	if err != nil {
		return err
	}
	if len(ll) == 0 {
		a.log.Warn().Msg("no lights to control")
		return nil
	}

	for _, l := range ll {
		if err := f(l); err != nil {
			return err
		}
	}
	return nil
}
