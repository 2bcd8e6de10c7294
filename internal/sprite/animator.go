package sprite

import (
	"image"
	"math"

	"github.com/yh284914425/video-progress/internal/config"
)

// Pose is where and how the character is drawn on one output frame.
type Pose struct {
	Index  int
	Frame  *image.RGBA
	Pos    image.Point // top-left corner
	Bounce int         // vertical displacement already included in Pos
}

// Center returns the middle of the drawn character.
func (p Pose) Center() image.Point {
	if p.Frame == nil {
		return p.Pos
	}
	return p.Pos.Add(p.Frame.Rect.Size().Div(2))
}

// Animator places the sprite along the bar. It keeps no state between calls:
// the same tick and fill always give the same Pose.
type Animator struct {
	sprite *Sprite
	frame  image.Rectangle

	speed  float64
	offset image.Point
	top    bool

	bounce      bool
	amplitude   float64
	bounceSpeed float64
}

// NewAnimator binds s to the settings in cfg for output frames of the given bounds.
func NewAnimator(s *Sprite, cfg *config.RenderConfig, frame image.Rectangle) *Animator {
	return &Animator{
		sprite:      s,
		frame:       frame,
		speed:       cfg.AnimationSpeed,
		offset:      image.Pt(cfg.CharacterOffsetX, cfg.CharacterOffsetY),
		top:         cfg.Position == config.PositionTop,
		bounce:      cfg.EnableBounce,
		amplitude:   cfg.BounceAmplitude,
		bounceSpeed: cfg.BounceSpeed,
	}
}

// FrameIndex returns floor(tick * speed) modulo the sprite length.
func (a *Animator) FrameIndex(tick int) int {
	n := a.sprite.Len()
	if n <= 1 {
		return 0
	}
	i := int(math.Floor(float64(tick)*a.speed)) % n
	if i < 0 {
		i += n
	}
	return i
}

// BounceOffset returns the vertical bounce displacement for tick.
func (a *Animator) BounceOffset(tick int) int {
	if !a.bounce {
		return 0
	}
	return int(math.Round(a.amplitude * math.Sin(float64(tick)*a.bounceSpeed)))
}

// Advance computes the pose for tick. The character's right edge follows the
// fill edge of track (fillW pixels from its left) and it rests on the bar's
// outer side.
func (a *Animator) Advance(tick int, track image.Rectangle, fillW int) Pose {
	idx := a.FrameIndex(tick)
	fr := a.sprite.Frames[idx]
	size := fr.Rect.Size()

	x := track.Min.X + max(0, fillW-size.X) + a.offset.X
	var y int
	if a.top {
		y = track.Max.Y + abs(a.offset.Y)
	} else {
		y = track.Min.Y - size.Y + a.offset.Y
	}

	x = clampInt(x, a.frame.Min.X, a.frame.Max.X-size.X)
	y = clampInt(y, a.frame.Min.Y, a.frame.Max.Y-size.Y)

	dy := a.BounceOffset(tick)
	return Pose{Index: idx, Frame: fr, Pos: image.Pt(x, y+dy), Bounce: dy}
}

func clampInt(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	return max(lo, min(v, hi))
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
