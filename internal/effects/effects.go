package effects

import (
	"image"
	"image/color"
	"math/rand/v2"

	"github.com/yh284914425/video-progress/internal/config"
	"github.com/yh284914425/video-progress/internal/raster"
)

// RayCount is the number of rays in one bolt.
const RayCount = 3

// Bolt is a single-frame lightning accent: RayCount jagged rays from Origin.
// Every ray is a polyline of Origin, a kink and an end point.
type Bolt struct {
	Origin image.Point
	Rays   [RayCount][3]image.Point
}

// Lightning decides per frame whether a bolt is drawn. Each frame is an
// independent trial; nothing carries over to the next frame.
type Lightning struct {
	rng     *rand.Rand
	enabled bool
	chance  float64
	color   color.RGBA
}

func NewLightning(cfg *config.RenderConfig, rng *rand.Rand) *Lightning {
	return &Lightning{
		rng:     rng,
		enabled: cfg.EnableLightning,
		chance:  cfg.LightningChance,
		color:   cfg.LightningColor.RGBA(),
	}
}

// MaybeFlash runs the trial for one frame around pos. When the effect is
// disabled no random numbers are consumed.
func (l *Lightning) MaybeFlash(pos image.Point) (bool, Bolt) {
	if !l.enabled {
		return false, Bolt{}
	}
	if l.rng.Float64() >= l.chance {
		return false, Bolt{}
	}

	origin := pos.Add(image.Pt(l.rng.IntN(40)-20, l.rng.IntN(20)-10))
	b := Bolt{Origin: origin}
	for i := range b.Rays {
		end := origin.Add(image.Pt(l.rng.IntN(30)-15, l.rng.IntN(30)-15))
		kink := origin.Add(end.Sub(origin).Div(2)).Add(image.Pt(l.rng.IntN(9)-4, l.rng.IntN(9)-4))
		b.Rays[i] = [3]image.Point{origin, kink, end}
	}
	return true, b
}

// Draw renders b: colored rays two pixels wide with a one pixel white core.
func (l *Lightning) Draw(dst *image.RGBA, b Bolt) {
	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	for _, ray := range b.Rays {
		for i := 0; i+1 < len(ray); i++ {
			raster.DrawLine(dst, ray[i], ray[i+1], 2, l.color, 1)
		}
		for i := 0; i+1 < len(ray); i++ {
			raster.DrawLine(dst, ray[i], ray[i+1], 1, white, 1)
		}
	}
}
