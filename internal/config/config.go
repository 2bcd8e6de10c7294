package config

import (
	"image"
	"image/color"
)

// Config holds every setting of one run: the render settings consumed by the
// compositor plus the settings of the collaborators around it.
type Config struct {
	RenderConfig `yaml:",inline"`

	InputVideo   string  `yaml:"input_video" toml:"input_video"`
	OutputVideo  string  `yaml:"output_video" toml:"output_video"`
	KeepAudio    bool    `yaml:"keep_audio" toml:"keep_audio"`
	VideoEncoder string  `yaml:"video_encoder,omitempty" toml:"video_encoder,omitempty"`
	Quality      int     `yaml:"quality" toml:"quality"`
	SequenceFPS  float64 `yaml:"sequence_fps" toml:"sequence_fps"`
	QueueDepth   int     `yaml:"queue_depth" toml:"queue_depth"`
	ShowStats    bool    `yaml:"show_stats" toml:"show_stats"`
	BuildVersion string  `yaml:"-" toml:"-"`
}

// RenderConfig is the fully resolved set of overlay settings. It is built once
// per run and never mutated afterwards.
type RenderConfig struct {
	BarHeight       int    `yaml:"bar_height" toml:"bar_height"`
	Margin          int    `yaml:"margin" toml:"margin"`
	Position        string `yaml:"position" toml:"position"`
	BarColor        Color  `yaml:"bar_color" toml:"bar_color"`
	BackgroundColor Color  `yaml:"background_color" toml:"background_color"`
	CornerRadius    int    `yaml:"corner_radius" toml:"corner_radius"`

	GradientEnabled    bool    `yaml:"gradient_enabled" toml:"gradient_enabled"`
	GradientDirection  string  `yaml:"gradient_direction" toml:"gradient_direction"`
	GradientStartColor *Color  `yaml:"gradient_start_color,omitempty" toml:"gradient_start_color,omitempty"`
	GlowEnabled        bool    `yaml:"glow_enabled" toml:"glow_enabled"`
	GlowRadius         int     `yaml:"glow_radius" toml:"glow_radius"`
	GlowOpacity        float64 `yaml:"glow_opacity" toml:"glow_opacity"`
	ShineEnabled       bool    `yaml:"shine_enabled" toml:"shine_enabled"`
	BorderThickness    int     `yaml:"border_thickness" toml:"border_thickness"`
	BorderColor        Color   `yaml:"border_color" toml:"border_color"`

	CharacterPath    string  `yaml:"character_path" toml:"character_path"`
	CharacterSize    Size    `yaml:"character_size" toml:"character_size"`
	CharacterOffsetX int     `yaml:"character_offset_x" toml:"character_offset_x"`
	CharacterOffsetY int     `yaml:"character_offset_y" toml:"character_offset_y"`
	AnimationSpeed   float64 `yaml:"animation_speed" toml:"animation_speed"`

	EnableBounce    bool    `yaml:"enable_bounce" toml:"enable_bounce"`
	BounceAmplitude float64 `yaml:"bounce_amplitude" toml:"bounce_amplitude"`
	BounceSpeed     float64 `yaml:"bounce_speed" toml:"bounce_speed"`

	EnableLightning bool    `yaml:"enable_lightning" toml:"enable_lightning"`
	LightningChance float64 `yaml:"lightning_chance" toml:"lightning_chance"`
	LightningColor  Color   `yaml:"lightning_color" toml:"lightning_color"`

	EnableParticles     bool    `yaml:"enable_particles" toml:"enable_particles"`
	ParticleColor       Color   `yaml:"particle_color" toml:"particle_color"`
	ParticleLifetime    int     `yaml:"particle_lifetime" toml:"particle_lifetime"`
	ParticleSpawnChance float64 `yaml:"particle_spawn_chance" toml:"particle_spawn_chance"`
	ParticleSpawnMax    int     `yaml:"particle_spawn_max" toml:"particle_spawn_max"`
	ParticleMax         int     `yaml:"particle_max" toml:"particle_max"`

	TextEnabled  bool    `yaml:"text_enabled" toml:"text_enabled"`
	TextColor    Color   `yaml:"text_color" toml:"text_color"`
	TextSize     float64 `yaml:"text_size" toml:"text_size"`
	TextPosition string  `yaml:"text_position" toml:"text_position"`
	TextOffsetX  int     `yaml:"text_offset_x" toml:"text_offset_x"`
	TextOffsetY  int     `yaml:"text_offset_y" toml:"text_offset_y"`
	TextShadow   bool    `yaml:"text_shadow" toml:"text_shadow"`

	Seed       int64 `yaml:"seed" toml:"seed"`
	TailFrames int   `yaml:"tail_frames" toml:"tail_frames"`
}

// Color is an RGB triple as written in config files: [r, g, b].
type Color [3]uint8

// RGBA returns the opaque color.
func (c Color) RGBA() color.RGBA {
	return color.RGBA{R: c[0], G: c[1], B: c[2], A: 255}
}

// Scale multiplies every channel by f, clamped to [0, 255].
func (c Color) Scale(f float64) Color {
	var out Color
	for i, v := range c {
		s := float64(v) * f
		if s < 0 {
			s = 0
		}
		if s > 255 {
			s = 255
		}
		out[i] = uint8(s)
	}
	return out
}

// Size is a [width, height] pair.
type Size [2]int

func (s Size) W() int { return s[0] }
func (s Size) H() int { return s[1] }

func (s Size) Point() image.Point {
	return image.Point{X: s[0], Y: s[1]}
}

// GradientFrom returns the color the gradient starts from.
func (r *RenderConfig) GradientFrom() Color {
	if r.GradientStartColor != nil {
		return *r.GradientStartColor
	}
	return r.BarColor.Scale(0.6)
}

// DisableEffects turns off every animated effect, as the --no-effects flag does.
func (r *RenderConfig) DisableEffects() {
	r.EnableBounce = false
	r.EnableLightning = false
	r.EnableParticles = false
}
