package config

import (
	"errors"
	"os"
)

// Validate checks every setting and returns all violations joined together.
func (c *Config) Validate() error {
	var errs []error
	if err := c.RenderConfig.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Quality < 0 {
		errs = append(errs, &ConfigError{"quality", c.Quality, "must not be negative"})
	}
	if c.SequenceFPS <= 0 || c.SequenceFPS > 240 {
		errs = append(errs, &ConfigError{"sequence_fps", c.SequenceFPS, "must be in (0, 240]"})
	}
	if c.QueueDepth < 1 || c.QueueDepth > 64 {
		errs = append(errs, &ConfigError{"queue_depth", c.QueueDepth, "must be in [1, 64]"})
	}
	return errors.Join(errs...)
}

func (r *RenderConfig) Validate() error {
	var errs []error
	check := func(ok bool, field string, value any, reason string) {
		if !ok {
			errs = append(errs, &ConfigError{Field: field, Value: value, Reason: reason})
		}
	}

	check(r.BarHeight > 0 && r.BarHeight <= 1000, "bar_height", r.BarHeight, "must be in [1, 1000]")
	check(r.Margin >= 0, "margin", r.Margin, "must not be negative")
	check(r.Position == PositionTop || r.Position == PositionBottom, "position", r.Position, "must be top or bottom")
	check(r.CornerRadius >= 0, "corner_radius", r.CornerRadius, "must not be negative")

	check(r.GradientDirection == GradientHorizontal || r.GradientDirection == GradientVertical,
		"gradient_direction", r.GradientDirection, "must be horizontal or vertical")
	check(r.GlowRadius >= 0 && r.GlowRadius <= 64, "glow_radius", r.GlowRadius, "must be in [0, 64]")
	check(r.GlowOpacity >= 0 && r.GlowOpacity <= 1, "glow_opacity", r.GlowOpacity, "must be in [0, 1]")
	check(r.BorderThickness >= 0 && r.BorderThickness <= 50, "border_thickness", r.BorderThickness, "must be in [0, 50]")

	if r.CharacterPath != "" {
		if _, err := os.Stat(r.CharacterPath); err != nil {
			check(false, "character_path", r.CharacterPath, "asset not found")
		}
	}
	check(r.CharacterSize.W() > 0 && r.CharacterSize.W() <= 2048 &&
		r.CharacterSize.H() > 0 && r.CharacterSize.H() <= 2048,
		"character_size", r.CharacterSize, "each side must be in [1, 2048]")
	check(r.AnimationSpeed > 0 && r.AnimationSpeed <= 100, "animation_speed", r.AnimationSpeed, "must be in (0, 100]")

	check(r.BounceAmplitude >= 0 && r.BounceAmplitude <= 1000, "bounce_amplitude", r.BounceAmplitude, "must be in [0, 1000]")
	check(r.BounceSpeed >= 0 && r.BounceSpeed <= 10, "bounce_speed", r.BounceSpeed, "must be in [0, 10]")

	check(r.LightningChance >= 0 && r.LightningChance <= 1, "lightning_chance", r.LightningChance, "must be in [0, 1]")

	check(r.ParticleLifetime > 0 && r.ParticleLifetime <= 10000, "particle_lifetime", r.ParticleLifetime, "must be in [1, 10000]")
	check(r.ParticleSpawnChance >= 0 && r.ParticleSpawnChance <= 1, "particle_spawn_chance", r.ParticleSpawnChance, "must be in [0, 1]")
	check(r.ParticleSpawnMax >= 0 && r.ParticleSpawnMax <= 16, "particle_spawn_max", r.ParticleSpawnMax, "must be in [0, 16]")
	check(r.ParticleMax > 0 && r.ParticleMax <= HardParticleCap, "particle_max", r.ParticleMax, "must be in [1, 4096]")

	check(r.TextSize > 0 && r.TextSize <= 20, "text_size", r.TextSize, "must be in (0, 20]")
	switch r.TextPosition {
	case TextLeft, TextCenter, TextRight, TextFollow:
	default:
		check(false, "text_position", r.TextPosition, "must be left, center, right or follow")
	}

	check(r.TailFrames >= 0 && r.TailFrames <= 600, "tail_frames", r.TailFrames, "must be in [0, 600]")

	return errors.Join(errs...)
}

// ValidateFrame checks that a frame of the given size can hold the bar.
func (r *RenderConfig) ValidateFrame(width, height int) error {
	var errs []error
	if height < r.BarHeight+r.Margin {
		errs = append(errs, &ConfigError{"bar_height", r.BarHeight, "frame too short for bar_height + margin"})
	}
	if width <= 2*r.Margin {
		errs = append(errs, &ConfigError{"margin", r.Margin, "frame too narrow for the bar track"})
	}
	return errors.Join(errs...)
}
