package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/yh284914425/video-progress/internal/config"
)

func changedSet(names ...string) func(string) bool {
	set := map[string]bool{}
	for _, n := range names {
		set[n] = true
	}
	return func(name string) bool { return set[name] }
}

func TestResolveLayers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	body := "bar_height: 20\nposition: top\nseed: 5\nenable_particles: true\n"
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	opts := &options{
		configPath: path,
		preset:     "minimal",
		position:   config.PositionBottom,
		color:      []int{255, 0, 0},
		offset:     []int{3, -7},
		size:       []int{32, 48},
		seed:       99,
		noAudio:    true,
		output:     "out.mp4",
	}
	cfg, err := opts.resolve(changedSet("color", "offset", "size"))
	if err != nil {
		t.Fatal(err)
	}

	if cfg.BarHeight != 20 {
		t.Errorf("file value lost: bar_height = %d", cfg.BarHeight)
	}
	if cfg.Position != config.PositionTop {
		t.Errorf("unset --position overrode the file: %s", cfg.Position)
	}
	if cfg.Seed != 5 {
		t.Errorf("unset --seed overrode the file: %d", cfg.Seed)
	}
	if cfg.EnableParticles {
		t.Errorf("preset did not apply over the file")
	}
	if cfg.BarColor != (config.Color{255, 0, 0}) || cfg.CharacterOffsetX != 3 || cfg.CharacterOffsetY != -7 {
		t.Errorf("flags not applied: color=%v offset=%d,%d", cfg.BarColor, cfg.CharacterOffsetX, cfg.CharacterOffsetY)
	}
	if cfg.CharacterSize != (config.Size{32, 48}) {
		t.Errorf("size = %v", cfg.CharacterSize)
	}
	if cfg.KeepAudio || cfg.OutputVideo != "out.mp4" {
		t.Errorf("keep_audio=%v output=%q", cfg.KeepAudio, cfg.OutputVideo)
	}
}

func TestResolveRejectsBadFlags(t *testing.T) {
	tests := []struct {
		name string
		opts options
		set  []string
	}{
		{"short color", options{color: []int{1, 2}}, []string{"color"}},
		{"color out of range", options{color: []int{0, 300, 0}}, []string{"color"}},
		{"size arity", options{size: []int{10}}, []string{"size"}},
		{"offset arity", options{offset: []int{1, 2, 3}}, []string{"offset"}},
		{"unknown preset", options{preset: "neon"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.opts.resolve(changedSet(tt.set...))
			if !errors.Is(err, config.ErrInvalidConfig) {
				t.Errorf("got %v, want a config error", err)
			}
		})
	}
}

func TestResolveNoEffects(t *testing.T) {
	opts := &options{noEffects: true}
	cfg, err := opts.resolve(changedSet())
	if err != nil {
		t.Fatal(err)
	}
	if cfg.EnableBounce || cfg.EnableLightning || cfg.EnableParticles {
		t.Errorf("effects still enabled")
	}
}

func TestResolveInput(t *testing.T) {
	cfg := config.Default()
	if got, _ := resolveInput([]string{"a.mp4"}, cfg); got != "a.mp4" {
		t.Errorf("argument ignored: %q", got)
	}
	cfg.InputVideo = "from-config.mp4"
	if got, _ := resolveInput(nil, cfg); got != "from-config.mp4" {
		t.Errorf("config input ignored: %q", got)
	}
}

func TestDefaultOutput(t *testing.T) {
	now := time.Date(2024, 3, 9, 14, 5, 6, 0, time.UTC)
	got := defaultOutput("/videos/my clip.mov", now)
	want := filepath.Join("output", "my_clip_progress_2024-03-09_14-05-06.mp4")
	if got != want {
		t.Errorf("defaultOutput = %q, want %q", got, want)
	}
	if got := defaultOutput("frames/", now); !strings.HasPrefix(filepath.Base(got), "frames_progress_") {
		t.Errorf("directory input: %q", got)
	}
}

func TestRatio(t *testing.T) {
	tests := []struct {
		written, total int64
		want           float64
	}{
		{0, 0, 0},
		{5, 10, 0.5},
		{12, 10, 1},
	}
	for _, tt := range tests {
		if got := ratio(tt.written, tt.total); got != tt.want {
			t.Errorf("ratio(%d, %d) = %v, want %v", tt.written, tt.total, got, tt.want)
		}
	}
}

func TestInitConfigCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cmd := newRootCmd()
	cmd.SetArgs([]string{"init-config", "--preset", "gaming", path})
	var out strings.Builder
	cmd.SetOut(&out)
	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.GradientEnabled || !cfg.EnableLightning {
		t.Errorf("gaming preset not written: gradient=%v lightning=%v", cfg.GradientEnabled, cfg.EnableLightning)
	}
	if !strings.Contains(out.String(), path) {
		t.Errorf("output = %q", out.String())
	}
}
