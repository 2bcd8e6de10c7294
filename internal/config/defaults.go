package config

const (
	PositionTop    = "top"
	PositionBottom = "bottom"

	TextLeft   = "left"
	TextCenter = "center"
	TextRight  = "right"
	TextFollow = "follow"

	GradientHorizontal = "horizontal"
	GradientVertical   = "vertical"

	// HardParticleCap bounds particle_max regardless of configuration.
	HardParticleCap = 4096
)

// Default returns the configuration used when nothing else is specified.
// Effects are on and the character rides the bar's fill edge.
func Default() *Config {
	return &Config{
		RenderConfig: DefaultRender(),
		KeepAudio:    true,
		SequenceFPS:  30,
		QueueDepth:   4,
	}
}

func DefaultRender() RenderConfig {
	return RenderConfig{
		BarHeight:       40,
		Margin:          25,
		Position:        PositionBottom,
		BarColor:        Color{0, 255, 255},
		BackgroundColor: Color{50, 50, 50},

		GradientEnabled:   true,
		GradientDirection: GradientHorizontal,
		GlowEnabled:       true,
		GlowRadius:        8,
		GlowOpacity:       0.35,
		ShineEnabled:      true,
		BorderThickness:   3,
		BorderColor:       Color{255, 255, 255},

		CharacterSize:    Size{60, 60},
		CharacterOffsetY: -5,
		AnimationSpeed:   0.34,

		EnableBounce:    true,
		BounceAmplitude: 8,
		BounceSpeed:     0.2,

		EnableLightning: true,
		LightningChance: 0.3,
		LightningColor:  Color{0, 255, 255},

		EnableParticles:     true,
		ParticleColor:       Color{0, 255, 255},
		ParticleLifetime:    60,
		ParticleSpawnChance: 0.2,
		ParticleSpawnMax:    1,
		ParticleMax:         256,

		TextEnabled:  true,
		TextColor:    Color{0, 255, 255},
		TextSize:     1.5,
		TextPosition: TextRight,
		TextOffsetX:  15,
		TextShadow:   true,
	}
}
