// Package renderer draws the progress bar and its percentage text.
package renderer

import (
	"fmt"
	"image"
	"image/color"

	"github.com/yh284914425/video-progress/internal/config"
	"github.com/yh284914425/video-progress/internal/raster"
)

const (
	shineOffset  = 20
	shinePeriod  = 20
	shadowOffset = 2
)

// Bar renders the track, fill, glow, border and text for frames of one size.
// Apart from the text mask cache it has no state, so rendering the same
// fraction and tick twice gives the same pixels.
type Bar struct {
	cfg   config.RenderConfig
	frame image.Rectangle
	track image.Rectangle

	masks map[int]*image.Alpha
}

// NewBar lays the bar out inside frame according to cfg.
func NewBar(cfg *config.RenderConfig, frame image.Rectangle) *Bar {
	trackW := frame.Dx() - 2*cfg.Margin
	x0 := frame.Min.X + cfg.Margin
	y0 := frame.Max.Y - cfg.Margin - cfg.BarHeight
	if cfg.Position == config.PositionTop {
		y0 = frame.Min.Y + cfg.Margin
	}
	return &Bar{
		cfg:   *cfg,
		frame: frame,
		track: image.Rect(x0, y0, x0+max(trackW, 0), y0+cfg.BarHeight),
		masks: make(map[int]*image.Alpha),
	}
}

// Track returns the full bar rectangle.
func (b *Bar) Track() image.Rectangle { return b.track }

// FillWidth is the filled width in pixels for fraction.
func (b *Bar) FillWidth(fraction float64) int {
	return FillWidth(fraction, b.track.Dx())
}

// FillRect is the left-aligned filled part of the track.
func (b *Bar) FillRect(fraction float64) image.Rectangle {
	r := b.track
	r.Max.X = r.Min.X + b.FillWidth(fraction)
	return r
}

// Render draws the bar for fraction onto dst. tick drives the blinking shine.
func (b *Bar) Render(dst *image.RGBA, fraction float64, tick int) {
	fraction = Clamp01(fraction)
	cfg := &b.cfg
	fill := b.FillRect(fraction)
	radius := min(cfg.CornerRadius, b.track.Dy()/2)

	raster.FillRoundedRect(dst, b.track, radius, cfg.BackgroundColor.RGBA(), 1)

	if !fill.Empty() {
		if cfg.GlowEnabled {
			raster.Glow(dst, fill, cfg.GlowRadius, cfg.BarColor.RGBA(), cfg.GlowOpacity)
		}
		fillRadius := min(radius, fill.Dx()/2)
		if cfg.GradientEnabled {
			raster.GradientFill(dst, fill, fillRadius, cfg.GradientFrom().RGBA(), cfg.BarColor.RGBA(),
				cfg.GradientDirection == config.GradientVertical)
		} else {
			raster.FillRoundedRect(dst, fill, fillRadius, cfg.BarColor.RGBA(), 1)
		}
		if cfg.ShineEnabled && tick%shinePeriod < shinePeriod/2 {
			x := fill.Max.X - shineOffset
			if x > b.track.Min.X {
				white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
				raster.DrawLine(dst, image.Pt(x, fill.Min.Y), image.Pt(x, fill.Max.Y-1), 3, white, 1)
			}
		}
	}

	if cfg.BorderThickness > 0 {
		raster.StrokeRect(dst, b.track, radius, cfg.BorderThickness, cfg.BorderColor.RGBA())
	}

	if cfg.TextEnabled {
		mask := b.textMask(Percent(fraction))
		at := b.TextAnchor(mask.Bounds().Size(), fill.Max.X)
		raster.DrawText(dst, mask, at, cfg.TextColor.RGBA(), cfg.TextShadow, shadowOffset)
	}
}

// TextAnchor returns the top-left corner of a text block of the given size.
// fillEdge is the x coordinate of the end of the fill.
func (b *Bar) TextAnchor(size image.Point, fillEdge int) image.Point {
	cfg := &b.cfg
	t := b.track
	var x int
	switch cfg.TextPosition {
	case config.TextLeft:
		x = t.Min.X + cfg.TextOffsetX
	case config.TextCenter:
		x = t.Min.X + int(lerp(0, float64(t.Dx()-size.X), 0.5)) + cfg.TextOffsetX
	case config.TextFollow:
		x = max(t.Min.X, min(fillEdge-size.X/2, t.Max.X-size.X)) + cfg.TextOffsetX
	default:
		x = t.Max.X - size.X - cfg.TextOffsetX
	}
	x = max(b.frame.Min.X, min(x, b.frame.Max.X-size.X))
	y := t.Min.Y + (t.Dy()-size.Y)/2 + cfg.TextOffsetY
	return image.Pt(x, y)
}

func (b *Bar) textMask(percent int) *image.Alpha {
	if m, ok := b.masks[percent]; ok {
		return m
	}
	m := raster.TextMask(fmt.Sprintf("%d%%", percent), b.cfg.TextSize)
	b.masks[percent] = m
	return m
}
