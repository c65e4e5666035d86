package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/ritzau/dag-ui/pkg/model"
)

// DefaultFile is the optional config file read from the working directory
const DefaultFile = "dag-ui.toml"

// EnvPrefix is the prefix of environment overrides, e.g. DAG_UI_OUT=graph.html
const EnvPrefix = "DAG_UI_"

// Node id schemes
const (
	NodeIDsCounter = "counter"
	NodeIDsUUID    = "uuid"
)

// Config holds all configuration for the application
type Config struct {
	Seed       string   `koanf:"seed"`
	Batches    []string `koanf:"batch"`
	AddNodes   int      `koanf:"add-nodes"`
	Connect    []string `koanf:"connect"`
	Out        string   `koanf:"out"`
	Title      string   `koanf:"title"`
	Acyclic    bool     `koanf:"acyclic"`
	NodeIDs    string   `koanf:"node-ids"`
	WatchDir   string   `koanf:"watch"`
	Verbosity  string   `koanf:"verbosity"`
	VerboseCnt int      `koanf:"verbose"`
	LogFormat  string   `koanf:"log-format"`

	Surface model.SurfaceOptions `koanf:"surface"`
}

// Defaults returns the configuration used when nothing overrides it, nested by section
func Defaults() map[string]interface{} {
	surface := model.DefaultSurfaceOptions()
	return map[string]interface{}{
		"seed":       "",
		"batch":      []string{},
		"add-nodes":  0,
		"connect":    []string{},
		"out":        "dag-ui.html",
		"title":      "DAG UI",
		"acyclic":    false,
		"node-ids":   NodeIDsCounter,
		"watch":      "",
		"verbosity":  "",
		"verbose":    0,
		"log-format": "compact",
		"surface": map[string]interface{}{
			"fit-view":         surface.FitView,
			"fit-view-padding": surface.FitViewPadding,
			"color-mode":       string(surface.ColorMode),
			"edges": map[string]interface{}{
				"animated": surface.DefaultEdgeOptions.Animated,
			},
			"hide-attribution": surface.HideAttribution,
		},
	}
}

// Load loads configuration from defaults, config file, environment variables, and flags.
// Priority: Flags > Env > Config File > Defaults
func Load(f *pflag.FlagSet) (*Config, error) {
	return LoadFile(f, DefaultFile)
}

// LoadFile is Load with an explicit config file path. A missing file is not an error.
func LoadFile(f *pflag.FlagSet, path string) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(makeMapProvider(Defaults()), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config File (optional)
	if path != "" {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
	}

	// 3. Environment Variables
	// DAG_UI_ADD_NODES=3 sets add-nodes, DAG_UI_SURFACE__COLOR_MODE=dark sets surface.color-mode
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags
	if f != nil {
		if err := k.Load(posflag.ProviderWithFlag(f, ".", k, flagKey(f)), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// Unmarshal into struct
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks values koanf cannot type-check
func (c *Config) Validate() error {
	if !c.Surface.ColorMode.Valid() {
		return fmt.Errorf("invalid color mode %q (want light or dark)", c.Surface.ColorMode)
	}
	if c.NodeIDs != NodeIDsCounter && c.NodeIDs != NodeIDsUUID {
		return fmt.Errorf("invalid node id scheme %q (want counter or uuid)", c.NodeIDs)
	}
	if c.LogFormat != "compact" && c.LogFormat != "json" {
		return fmt.Errorf("invalid log format %q (want compact or json)", c.LogFormat)
	}
	if c.AddNodes < 0 {
		return fmt.Errorf("add-nodes must not be negative, got %d", c.AddNodes)
	}
	if c.Surface.FitViewPadding < 0 {
		return fmt.Errorf("fit-view-padding must not be negative, got %v", c.Surface.FitViewPadding)
	}
	return nil
}

// Connections parses the SRC:TGT pairs given with --connect
func (c *Config) Connections() ([]model.Connection, error) {
	conns := make([]model.Connection, 0, len(c.Connect))
	for _, pair := range c.Connect {
		source, target, ok := strings.Cut(pair, ":")
		if !ok || source == "" || target == "" {
			return nil, fmt.Errorf("invalid connection %q (want SRC:TGT)", pair)
		}
		conns = append(conns, model.Connection{Source: source, Target: target})
	}
	return conns, nil
}

// envKey maps DAG_UI_SURFACE__FIT_VIEW to surface.fit-view
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	parts := strings.Split(s, "__")
	for i, p := range parts {
		parts[i] = strings.ReplaceAll(p, "_", "-")
	}
	return strings.Join(parts, ".")
}

// surfaceFlags are the flags that live under the surface section
var surfaceFlags = map[string]string{
	"fit-view":         "surface.fit-view",
	"fit-view-padding": "surface.fit-view-padding",
	"color-mode":       "surface.color-mode",
	"animated":         "surface.edges.animated",
	"hide-attribution": "surface.hide-attribution",
}

// flagKey places surface flags under their section. Unchanged flags are
// skipped so their defaults do not mask the file or env.
func flagKey(fs *pflag.FlagSet) func(f *pflag.Flag) (string, interface{}) {
	return func(f *pflag.Flag) (string, interface{}) {
		if !f.Changed {
			return "", nil
		}
		key := f.Name
		if mapped, ok := surfaceFlags[key]; ok {
			key = mapped
		}
		return key, posflag.FlagVal(fs, f)
	}
}

// Helper to use map as a provider
type mapProvider struct {
	m map[string]interface{}
}

func makeMapProvider(m map[string]interface{}) *mapProvider {
	return &mapProvider{m: m}
}

func (p *mapProvider) Read() (map[string]interface{}, error) {
	return p.m, nil
}

func (p *mapProvider) ReadBytes() ([]byte, error) {
	return nil, fmt.Errorf("not implemented")
}
