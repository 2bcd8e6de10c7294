package config

import (
	"fmt"
	"sort"
)

// Presets are named style overlays applied on top of the loaded config.
var Presets = map[string]func(*RenderConfig){
	// Gradient bar with glow and no character effects.
	"modern": func(r *RenderConfig) {
		r.GradientEnabled = true
		r.GlowEnabled = true
		r.CornerRadius = r.BarHeight / 4
		r.DisableEffects()
	},
	"cute": func(r *RenderConfig) {
		r.EnableBounce = true
		r.BounceAmplitude = 5
		r.BounceSpeed = 0.3
		r.EnableParticles = true
		r.EnableLightning = false
		r.CornerRadius = r.BarHeight / 2
	},
	"gaming": func(r *RenderConfig) {
		r.EnableBounce = true
		r.EnableLightning = true
		r.EnableParticles = true
		r.GradientEnabled = false
		r.BorderThickness = 3
		r.CornerRadius = 0
	},
	"minimal": func(r *RenderConfig) {
		r.GradientEnabled = false
		r.GlowEnabled = false
		r.ShineEnabled = false
		r.BorderThickness = 0
		r.DisableEffects()
	},
}

// ApplyPreset overlays the named preset. An empty name is a no-op.
func (r *RenderConfig) ApplyPreset(name string) error {
	if name == "" {
		return nil
	}
	apply, ok := Presets[name]
	if !ok {
		return &ConfigError{Field: "preset", Value: name, Reason: fmt.Sprintf("unknown preset, want one of %v", PresetNames())}
	}
	apply(r)
	return nil
}

func PresetNames() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
