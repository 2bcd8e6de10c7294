package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/yh284914425/video-progress/internal/config"
	"github.com/yh284914425/video-progress/internal/system"
)

const (
	autoConfig      = "config.json"
	defaultInputDir = "input/video"
	defaultOutDir   = "output"
	characterDir    = "assets/characters"
)

type options struct {
	output     string
	configPath string
	preset     string
	character  string
	size       []int
	position   string
	color      []int
	offset     []int
	noEffects  bool
	seed       int64
	quality    int
	stats      bool
	noAudio    bool
	verbose    bool
}

// resolve builds the run configuration: defaults, then the config file,
// then the preset, then every flag that was set on the command line.
func (o *options) resolve(changed func(name string) bool) (*config.Config, error) {
	cfg := config.Default()

	path := o.configPath
	if path == "" {
		if _, err := os.Stat(autoConfig); err == nil {
			path = autoConfig
		}
	}
	if path != "" {
		if err := config.LoadInto(cfg, path); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyPreset(o.preset); err != nil {
		return nil, err
	}

	if changed("character") {
		cfg.CharacterPath = o.character
	}
	if changed("size") {
		if len(o.size) != 2 {
			return nil, &config.ConfigError{Field: "character_size", Value: o.size, Reason: "want W,H"}
		}
		cfg.CharacterSize = config.Size{o.size[0], o.size[1]}
	}
	if changed("position") {
		cfg.Position = o.position
	}
	if changed("color") {
		c, err := parseColor(o.color)
		if err != nil {
			return nil, err
		}
		cfg.BarColor = c
	}
	if changed("offset") {
		if len(o.offset) != 2 {
			return nil, &config.ConfigError{Field: "character_offset", Value: o.offset, Reason: "want X,Y"}
		}
		cfg.CharacterOffsetX, cfg.CharacterOffsetY = o.offset[0], o.offset[1]
	}
	if o.noEffects {
		cfg.DisableEffects()
	}
	if changed("seed") {
		cfg.Seed = o.seed
	}
	if changed("quality") {
		cfg.Quality = o.quality
	}
	if o.stats {
		cfg.ShowStats = true
	}
	if o.noAudio {
		cfg.KeepAudio = false
	}
	if o.output != "" {
		cfg.OutputVideo = o.output
	}
	return cfg, nil
}

func parseColor(v []int) (config.Color, error) {
	if len(v) != 3 {
		return config.Color{}, &config.ConfigError{Field: "bar_color", Value: v, Reason: "want R,G,B"}
	}
	var c config.Color
	for i, ch := range v {
		if ch < 0 || ch > 255 {
			return config.Color{}, &config.ConfigError{Field: "bar_color", Value: v, Reason: "channels must be in [0, 255]"}
		}
		c[i] = uint8(ch)
	}
	return c, nil
}

// resolveInput picks the input: the argument, the config file's
// input_video, or the newest video in input/video.
func resolveInput(args []string, cfg *config.Config) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if cfg.InputVideo != "" {
		return cfg.InputVideo, nil
	}
	latest, err := system.FindLatestVideo(defaultInputDir)
	if err != nil {
		return "", fmt.Errorf("%w; put a video into %s/ or pass one as argument", err, defaultInputDir)
	}
	return latest, nil
}

// defaultOutput names the result after the input with a timestamp.
func defaultOutput(input string, now time.Time) string {
	base := filepath.Base(strings.TrimSuffix(input, string(filepath.Separator)))
	name := strings.TrimSuffix(base, filepath.Ext(base))
	name = strings.ReplaceAll(name, " ", "_")
	return filepath.Join(defaultOutDir, fmt.Sprintf("%s_progress_%s.mp4", name, now.Format("2006-01-02_15-04-05")))
}
