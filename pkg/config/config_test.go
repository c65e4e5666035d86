package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/spf13/pflag"

	"github.com/ritzau/dag-ui/pkg/model"
)

func newFlagSet() *pflag.FlagSet {
	f := pflag.NewFlagSet("dag-ui", pflag.ContinueOnError)
	f.String("out", "dag-ui.html", "")
	f.Int("add-nodes", 0, "")
	f.StringSlice("connect", nil, "")
	f.String("color-mode", "light", "")
	f.Bool("animated", false, "")
	f.Float64("fit-view-padding", 2, "")
	f.CountP("verbose", "v", "")
	return f
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dag-ui.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadFile(newFlagSet(), filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	if cfg.Out != "dag-ui.html" || cfg.NodeIDs != NodeIDsCounter || cfg.LogFormat != "compact" {
		t.Errorf("Unexpected defaults %+v", cfg)
	}
	if !reflect.DeepEqual(cfg.Surface, model.DefaultSurfaceOptions()) {
		t.Errorf("Surface = %+v, want %+v", cfg.Surface, model.DefaultSurfaceOptions())
	}
}

func TestLoadPriority(t *testing.T) {
	path := writeFile(t, strings.Join([]string{
		`out = "from-file.html"`,
		`add-nodes = 1`,
		`title = "File title"`,
		`[surface]`,
		`color-mode = "dark"`,
		`fit-view-padding = 0.5`,
		`[surface.edges]`,
		`animated = true`,
	}, "\n"))

	t.Setenv("DAG_UI_ADD_NODES", "4")
	t.Setenv("DAG_UI_TITLE", "Env title")
	t.Setenv("DAG_UI_SURFACE__HIDE_ATTRIBUTION", "true")

	f := newFlagSet()
	if err := f.Parse([]string{"--out", "flag.html", "-vv", "--connect", "1:2,2:3"}); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(f, path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"flag beats file", cfg.Out, "flag.html"},
		{"env beats file", cfg.AddNodes, 4},
		{"env beats default", cfg.Title, "Env title"},
		{"nested env", cfg.Surface.HideAttribution, true},
		{"file beats default", cfg.Surface.ColorMode, model.ColorModeDark},
		{"unchanged flag keeps file value", cfg.Surface.FitViewPadding, 0.5},
		{"file edge options", cfg.Surface.DefaultEdgeOptions.Animated, true},
		{"count flag", cfg.VerboseCnt, 2},
		{"default kept", cfg.Surface.FitView, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !reflect.DeepEqual(tt.got, tt.want) {
				t.Errorf("got %v (%T), want %v (%T)", tt.got, tt.got, tt.want, tt.want)
			}
		})
	}

	conns, err := cfg.Connections()
	if err != nil {
		t.Fatal(err)
	}
	want := []model.Connection{{Source: "1", Target: "2"}, {Source: "2", Target: "3"}}
	if !reflect.DeepEqual(conns, want) {
		t.Errorf("Connections() = %v, want %v", conns, want)
	}
}

func TestLoadSurfaceFlags(t *testing.T) {
	f := newFlagSet()
	if err := f.Parse([]string{"--color-mode", "dark", "--animated"}); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(f, "")
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if cfg.Surface.ColorMode != model.ColorModeDark || !cfg.Surface.DefaultEdgeOptions.Animated {
		t.Errorf("Surface flags not applied: %+v", cfg.Surface)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		file    string
		wantErr string
	}{
		{name: "color mode", args: []string{"--color-mode", "sepia"}, wantErr: "color mode"},
		{name: "negative add-nodes", args: []string{"--add-nodes", "-1"}, wantErr: "add-nodes"},
		{name: "bad toml", file: "out = ", wantErr: "failed to load"},
		{name: "node ids", file: `node-ids = "sequential"`, wantErr: "node id scheme"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFlagSet()
			if err := f.Parse(tt.args); err != nil {
				t.Fatal(err)
			}
			path := ""
			if tt.file != "" {
				path = writeFile(t, tt.file)
			}

			_, err := LoadFile(f, path)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestConnectionsInvalid(t *testing.T) {
	for _, pair := range []string{"12", ":2", "1:"} {
		cfg := &Config{Connect: []string{pair}}
		if _, err := cfg.Connections(); err == nil {
			t.Errorf("Connections(%q) expected error", pair)
		}
	}
}
