// Package particles implements the short-lived trail left behind the character.
package particles

import (
	"image"
	"image/color"
	"math/rand/v2"

	"github.com/yh284914425/video-progress/internal/config"
	"github.com/yh284914425/video-progress/internal/raster"
)

// Particle is one trail dot. It lives for Lifetime steps and fades linearly.
type Particle struct {
	X, Y      float64
	VX, VY    float64
	Size      float64
	Remaining int
	Lifetime  int
	Color     color.RGBA
}

// Alpha is remaining/lifetime; it drops by 1/Lifetime on every step.
func (p Particle) Alpha() float64 {
	if p.Lifetime <= 0 {
		return 0
	}
	return float64(p.Remaining) / float64(p.Lifetime)
}

// System owns the particle pool of one run.
type System struct {
	rng *rand.Rand

	enabled  bool
	color    color.RGBA
	lifetime int
	chance   float64
	spawnMax int
	limit    int

	pool []Particle
}

// New builds a particle system from cfg drawing randomness from rng.
func New(cfg *config.RenderConfig, rng *rand.Rand) *System {
	limit := min(cfg.ParticleMax, config.HardParticleCap)
	return &System{
		rng:      rng,
		enabled:  cfg.EnableParticles,
		color:    cfg.ParticleColor.RGBA(),
		lifetime: cfg.ParticleLifetime,
		chance:   cfg.ParticleSpawnChance,
		spawnMax: cfg.ParticleSpawnMax,
		limit:    limit,
		pool:     make([]Particle, 0, min(limit, 64)),
	}
}

// Step ages the pool by one frame and then spawns new particles around
// emitter. Expired particles are removed before spawning, so a particle
// spawned with lifetime L is returned by exactly L consecutive calls.
// A nil emitter only ages the pool.
//
// The returned slice is owned by the system and valid until the next call.
func (s *System) Step(emitter *image.Point) []Particle {
	live := s.pool[:0]
	for _, p := range s.pool {
		p.X += p.VX
		p.Y += p.VY
		p.Remaining--
		if p.Remaining > 0 {
			live = append(live, p)
		}
	}
	s.pool = live

	if s.enabled && emitter != nil {
		for i := 0; i < s.spawnMax && len(s.pool) < s.limit; i++ {
			if s.rng.Float64() >= s.chance {
				continue
			}
			s.pool = append(s.pool, s.spawn(*emitter))
		}
	}
	return s.pool
}

func (s *System) spawn(at image.Point) Particle {
	return Particle{
		X:         float64(at.X + s.rng.IntN(10) - 5),
		Y:         float64(at.Y + s.rng.IntN(10) - 5),
		VX:        float64(s.rng.IntN(3) - 2),
		VY:        float64(s.rng.IntN(4) - 2),
		Size:      float64(2 + s.rng.IntN(3)),
		Remaining: s.lifetime,
		Lifetime:  s.lifetime,
		Color:     s.color,
	}
}

// Draw renders every live particle as a disc with its current alpha.
func (s *System) Draw(dst *image.RGBA) {
	for _, p := range s.pool {
		center := image.Pt(int(p.X), int(p.Y))
		raster.FillCircle(dst, center, p.Size, p.Color, p.Alpha())
	}
}

// Len reports the number of live particles.
func (s *System) Len() int { return len(s.pool) }
