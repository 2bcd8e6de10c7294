package raster

import (
	"image"
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// GradientFill fills r with a color ramp from `from` at its left (or top) edge
// to `to` at its right (or bottom) edge. Colors are interpolated in CIE-Lab.
func GradientFill(dst *image.RGBA, r image.Rectangle, radius int, from, to color.RGBA, vertical bool) {
	span := r.Dx()
	if vertical {
		span = r.Dy()
	}
	if span <= 0 {
		return
	}
	ramp := Ramp(from, to, span)

	clip := r.Intersect(dst.Rect)
	for y := clip.Min.Y; y < clip.Max.Y; y++ {
		for x := clip.Min.X; x < clip.Max.X; x++ {
			cov := Coverage(r, radius, x, y)
			if cov <= 0 {
				continue
			}
			i := x - r.Min.X
			if vertical {
				i = y - r.Min.Y
			}
			BlendPixel(dst, x, y, ramp[i], cov)
		}
	}
}

// Ramp returns n colors stepping from `from` towards `to`; entry i sits at
// i/n, matching a fill whose last column is one step short of `to`.
func Ramp(from, to color.RGBA, n int) []color.RGBA {
	cf, _ := colorful.MakeColor(from)
	ct, _ := colorful.MakeColor(to)
	out := make([]color.RGBA, n)
	for i := range out {
		t := float64(i) / float64(n)
		r, g, b := cf.BlendLab(ct, t).Clamped().RGB255()
		out[i] = color.RGBA{R: r, G: g, B: b, A: 255}
	}
	return out
}

// Glow draws a soft halo of c around r whose opacity falls off quadratically
// with the distance from r, reaching zero at radius.
func Glow(dst *image.RGBA, r image.Rectangle, radius int, c color.RGBA, opacity float64) {
	if radius <= 0 || opacity <= 0 || r.Empty() {
		return
	}
	clip := r.Inset(-radius).Intersect(dst.Rect)
	fr := float64(radius + 1)
	for y := clip.Min.Y; y < clip.Max.Y; y++ {
		dy := float64(max(r.Min.Y-y, 0, y-(r.Max.Y-1)))
		for x := clip.Min.X; x < clip.Max.X; x++ {
			dx := float64(max(r.Min.X-x, 0, x-(r.Max.X-1)))
			d := math.Hypot(dx, dy)
			if d > float64(radius) {
				continue
			}
			fall := 1 - d/fr
			BlendPixel(dst, x, y, c, opacity*fall*fall)
		}
	}
}
