// Package sprite loads the animated character drawn on top of the progress
// bar and decides which of its frames is shown where on every output frame.
package sprite

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/image/draw"

	"github.com/yh284914425/video-progress/internal/raster"
)

// DefaultDelay is used for GIF frames that declare no delay and for still images.
const DefaultDelay = 100 * time.Millisecond

// Sprite is an ordered, immutable sequence of RGBA frames. The alpha channel
// of every frame is its transparency mask.
type Sprite struct {
	Frames []*image.RGBA
	Delays []time.Duration
}

// AssetLoadError reports a character asset that could not be decoded.
type AssetLoadError struct {
	Path string
	Err  error
}

func (e *AssetLoadError) Error() string {
	return fmt.Sprintf("load character %q: %v", e.Path, e.Err)
}

func (e *AssetLoadError) Unwrap() error { return e.Err }

// Len returns the number of frames.
func (s *Sprite) Len() int { return len(s.Frames) }

// Size returns the dimensions shared by all frames.
func (s *Sprite) Size() image.Point {
	if len(s.Frames) == 0 {
		return image.Point{}
	}
	return s.Frames[0].Rect.Size()
}

// Load decodes a GIF, PNG or JPEG character and scales every frame to size.
// A zero size keeps the asset's own dimensions.
func Load(path string, size image.Point) (*Sprite, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &AssetLoadError{Path: path, Err: err}
	}
	defer f.Close()

	var s *Sprite
	if strings.EqualFold(filepath.Ext(path), ".gif") {
		g, err := gif.DecodeAll(f)
		if err != nil {
			return nil, &AssetLoadError{Path: path, Err: err}
		}
		s = fromGIF(g)
	} else {
		img, _, err := image.Decode(f)
		if err != nil {
			return nil, &AssetLoadError{Path: path, Err: err}
		}
		s = &Sprite{Frames: []*image.RGBA{toRGBA(img)}, Delays: []time.Duration{DefaultDelay}}
	}
	if s.Len() == 0 {
		return nil, &AssetLoadError{Path: path, Err: errors.New("no frames")}
	}

	if size.X > 0 && size.Y > 0 && s.Size() != size {
		for i, fr := range s.Frames {
			s.Frames[i] = scale(fr, size)
		}
	}
	return s, nil
}

// fromGIF flattens the frames of g onto a logical screen, honoring each
// frame's disposal method, so that every resulting frame is a full picture.
func fromGIF(g *gif.GIF) *Sprite {
	screen := image.Rect(0, 0, g.Config.Width, g.Config.Height)
	if screen.Empty() && len(g.Image) > 0 {
		screen = g.Image[0].Bounds()
	}
	canvas := image.NewRGBA(screen)

	s := &Sprite{}
	for i, fr := range g.Image {
		var disposal byte
		if i < len(g.Disposal) {
			disposal = g.Disposal[i]
		}
		var saved *image.RGBA
		if disposal == gif.DisposalPrevious {
			saved = clone(canvas)
		}

		draw.Draw(canvas, fr.Bounds(), fr, fr.Bounds().Min, draw.Over)
		s.Frames = append(s.Frames, clone(canvas))

		delay := DefaultDelay
		if i < len(g.Delay) && g.Delay[i] > 0 {
			delay = time.Duration(g.Delay[i]) * 10 * time.Millisecond
		}
		s.Delays = append(s.Delays, delay)

		switch disposal {
		case gif.DisposalBackground:
			draw.Draw(canvas, fr.Bounds(), image.Transparent, image.Point{}, draw.Src)
		case gif.DisposalPrevious:
			canvas = saved
		}
	}
	return s
}

// Default builds the fallback character: a filled circle in c with two eyes.
func Default(size image.Point, c color.RGBA) *Sprite {
	img := image.NewRGBA(image.Rectangle{Max: size})
	center := image.Pt(size.X/2, size.Y/2)
	radius := min(size.X, size.Y) / 3

	raster.FillCircle(img, center, float64(radius), c, 1)
	black := color.RGBA{A: 255}
	eyeY := center.Y - radius/3
	raster.FillCircle(img, image.Pt(center.X-radius/3, eyeY), 3, black, 1)
	raster.FillCircle(img, image.Pt(center.X+radius/3, eyeY), 3, black, 1)

	return &Sprite{Frames: []*image.RGBA{img}, Delays: []time.Duration{DefaultDelay}}
}

func scale(src *image.RGBA, size image.Point) *image.RGBA {
	dst := image.NewRGBA(image.Rectangle{Max: size})
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

func toRGBA(img image.Image) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rectangle{Max: b.Size()})
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

func clone(src *image.RGBA) *image.RGBA {
	dst := image.NewRGBA(src.Rect)
	copy(dst.Pix, src.Pix)
	return dst
}
