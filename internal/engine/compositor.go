package engine

import (
	"errors"
	"fmt"
	"image"
	"math/rand/v2"
	"time"

	"github.com/yh284914425/video-progress/internal/config"
	"github.com/yh284914425/video-progress/internal/effects"
	"github.com/yh284914425/video-progress/internal/particles"
	"github.com/yh284914425/video-progress/internal/raster"
	"github.com/yh284914425/video-progress/internal/renderer"
	"github.com/yh284914425/video-progress/internal/source"
	"github.com/yh284914425/video-progress/internal/sprite"
	"github.com/yh284914425/video-progress/internal/system"
)

var (
	ErrOutOfOrder = errors.New("frame index not increasing")
	ErrFinished   = errors.New("compositor already drained")
	ErrFrameSize  = errors.New("frame size mismatch")
)

// State is the lifecycle stage of a Compositor.
type State int

const (
	StateInit State = iota
	StateStreaming
	StateDrain
	StateDone
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateStreaming:
		return "streaming"
	case StateDrain:
		return "drain"
	case StateDone:
		return "done"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Compositor draws the overlay onto frames of one run, in index order.
// The particle pool is the only state that carries from one frame to the
// next; everything else is derived from the frame index and count.
type Compositor struct {
	cfg   config.RenderConfig
	frame image.Rectangle
	pool  *system.ImagePool

	bar       *renderer.Bar
	animator  *sprite.Animator
	particles *particles.System
	lightning *effects.Lightning

	state     State
	lastIndex int
	last      *image.RGBA // last successfully decoded input, before compositing

	composited int
	tail       int
	failures   []int
}

// NewCompositor prepares a run over frames of the given bounds. cfg.Seed
// seeds the particle and lightning streams; 0 picks a time-based seed.
func NewCompositor(cfg *config.RenderConfig, spr *sprite.Sprite, frame image.Rectangle, pool *system.ImagePool) *Compositor {
	if pool == nil {
		pool = system.NewImagePool()
	}
	seed := uint64(cfg.Seed)
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &Compositor{
		cfg:       *cfg,
		frame:     frame,
		pool:      pool,
		bar:       renderer.NewBar(cfg, frame),
		animator:  sprite.NewAnimator(spr, cfg, frame),
		particles: particles.New(cfg, rand.New(rand.NewPCG(seed, 0x70617274))),
		lightning: effects.NewLightning(cfg, rand.New(rand.NewPCG(seed+1, 0x6c69676e))),
		state:     StateInit,
		lastIndex: -1,
	}
}

// State reports the lifecycle stage.
func (c *Compositor) State() State { return c.state }

// Composite draws the overlay for frame index of total onto img in place.
// Indices must strictly increase across calls.
func (c *Compositor) Composite(img *image.RGBA, index, total int) error {
	if err := c.accept(index); err != nil {
		return err
	}
	if img.Rect != c.frame {
		return fmt.Errorf("%w: frame %d is %v, want %v", ErrFrameSize, index, img.Rect, c.frame)
	}
	c.lastIndex = index
	c.render(img, index, renderer.Fraction(index, total), true)
	c.composited++
	return nil
}

// Process composites a decoded frame, or passes a failed one through:
// its raw bytes when they form a whole frame, otherwise a copy of the last
// good input frame (opaque black before the first one). The returned
// image is f.Image or a buffer from the pool.
func (c *Compositor) Process(f *source.Frame, total int) (*image.RGBA, error) {
	if f.Err == nil {
		c.remember(f.Image)
		if err := c.Composite(f.Image, f.Index, total); err != nil {
			return nil, err
		}
		return f.Image, nil
	}

	if err := c.accept(f.Index); err != nil {
		return nil, err
	}
	c.lastIndex = f.Index
	c.failures = append(c.failures, f.Index)
	return c.passThrough(f), nil
}

// Drain finishes the stream. It emits cfg.TailFrames extra frames at full
// progress built from the last good input, letting particles fade out
// without spawning new ones.
func (c *Compositor) Drain(emit func(*image.RGBA) error) error {
	if c.state == StateDone || c.state == StateDrain {
		return ErrFinished
	}
	c.state = StateDrain
	if c.last != nil {
		for i := 0; i < c.cfg.TailFrames; i++ {
			img := c.pool.Get(c.frame)
			copy(img.Pix, c.last.Pix)
			c.render(img, c.lastIndex+1+i, 1, false)
			c.tail++
			if err := emit(img); err != nil {
				return err
			}
		}
	}
	c.state = StateDone
	return nil
}

// Stats returns the counters collected so far.
func (c *Compositor) Stats() (composited, tail int, failures []int) {
	return c.composited, c.tail, append([]int(nil), c.failures...)
}

func (c *Compositor) accept(index int) error {
	switch c.state {
	case StateInit:
		c.state = StateStreaming
	case StateDrain, StateDone:
		return ErrFinished
	}
	if index <= c.lastIndex {
		return fmt.Errorf("%w: got %d after %d", ErrOutOfOrder, index, c.lastIndex)
	}
	return nil
}

// render draws bar, particles, lightning and character for tick. emit
// controls whether the character spawns new particles.
func (c *Compositor) render(img *image.RGBA, tick int, fraction float64, emit bool) {
	c.bar.Render(img, fraction, tick)

	pose := c.animator.Advance(tick, c.bar.Track(), c.bar.FillWidth(fraction))
	center := pose.Center()

	var emitter *image.Point
	if emit {
		emitter = &center
	}
	c.particles.Step(emitter)
	c.particles.Draw(img)

	if ok, bolt := c.lightning.MaybeFlash(center); ok {
		c.lightning.Draw(img, bolt)
	}

	raster.BlendImage(img, pose.Frame, pose.Pos)
}

func (c *Compositor) remember(img *image.RGBA) {
	if img.Rect != c.frame {
		return
	}
	if c.last == nil {
		c.last = image.NewRGBA(c.frame)
	}
	copy(c.last.Pix, img.Pix)
}

func (c *Compositor) passThrough(f *source.Frame) *image.RGBA {
	img := c.pool.Get(c.frame)
	switch {
	case len(f.Raw) == len(img.Pix):
		copy(img.Pix, f.Raw)
	case c.last != nil:
		copy(img.Pix, c.last.Pix)
	default:
		raster.FillRect(img, img.Rect, blackOpaque, 1)
	}
	return img
}

var blackOpaque = config.Color{}.RGBA()
