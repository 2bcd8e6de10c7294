// Package raster holds the drawing primitives the overlay is built from. All
// primitives draw straight (non-premultiplied) colors onto an *image.RGBA and
// clip to its bounds.
package raster

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
)

// BlendPixel mixes c into dst at (x, y) with the given opacity.
func BlendPixel(dst *image.RGBA, x, y int, c color.RGBA, alpha float64) {
	if !(image.Point{X: x, Y: y}).In(dst.Rect) {
		return
	}
	a := clamp01(alpha) * float64(c.A) / 255
	if a <= 0 {
		return
	}
	i := dst.PixOffset(x, y)
	p := dst.Pix[i : i+4 : i+4]
	p[0] = mix(p[0], c.R, a)
	p[1] = mix(p[1], c.G, a)
	p[2] = mix(p[2], c.B, a)
	p[3] = mix(p[3], 255, a)
}

// FillRect fills r with c at the given opacity.
func FillRect(dst *image.RGBA, r image.Rectangle, c color.RGBA, alpha float64) {
	r = r.Intersect(dst.Rect)
	if r.Empty() {
		return
	}
	if alpha >= 1 && c.A == 255 {
		draw.Draw(dst, r, image.NewUniform(c), image.Point{}, draw.Src)
		return
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			BlendPixel(dst, x, y, c, alpha)
		}
	}
}

// FillRoundedRect fills r with corners rounded to radius, antialiased.
func FillRoundedRect(dst *image.RGBA, r image.Rectangle, radius int, c color.RGBA, alpha float64) {
	if radius <= 0 {
		FillRect(dst, r, c, alpha)
		return
	}
	clip := r.Intersect(dst.Rect)
	for y := clip.Min.Y; y < clip.Max.Y; y++ {
		for x := clip.Min.X; x < clip.Max.X; x++ {
			if cov := Coverage(r, radius, x, y); cov > 0 {
				BlendPixel(dst, x, y, c, alpha*cov)
			}
		}
	}
}

// StrokeRect draws an outline of the given thickness around the outside of r.
func StrokeRect(dst *image.RGBA, r image.Rectangle, radius, thickness int, c color.RGBA) {
	if thickness <= 0 {
		return
	}
	outer := r.Inset(-thickness)
	outerRadius := 0
	if radius > 0 {
		outerRadius = radius + thickness
	}
	clip := outer.Intersect(dst.Rect)
	for y := clip.Min.Y; y < clip.Max.Y; y++ {
		for x := clip.Min.X; x < clip.Max.X; x++ {
			cov := Coverage(outer, outerRadius, x, y) - Coverage(r, radius, x, y)
			if cov > 0 {
				BlendPixel(dst, x, y, c, cov)
			}
		}
	}
}

// Coverage returns how much of pixel (x, y) lies inside r with rounded corners.
func Coverage(r image.Rectangle, radius, x, y int) float64 {
	if !(image.Point{X: x, Y: y}).In(r) {
		return 0
	}
	if radius <= 0 {
		return 1
	}
	rad := math.Min(float64(radius), math.Min(float64(r.Dx()), float64(r.Dy()))/2)
	px, py := float64(x)+0.5, float64(y)+0.5
	cx := math.Max(float64(r.Min.X)+rad, math.Min(px, float64(r.Max.X)-rad))
	cy := math.Max(float64(r.Min.Y)+rad, math.Min(py, float64(r.Max.Y)-rad))
	d := math.Hypot(px-cx, py-cy)
	return clamp01(rad - d + 0.5)
}

// FillCircle draws an antialiased disc.
func FillCircle(dst *image.RGBA, center image.Point, radius float64, c color.RGBA, alpha float64) {
	if radius <= 0 {
		return
	}
	ext := int(math.Ceil(radius)) + 1
	box := image.Rect(center.X-ext, center.Y-ext, center.X+ext+1, center.Y+ext+1).Intersect(dst.Rect)
	cx, cy := float64(center.X)+0.5, float64(center.Y)+0.5
	for y := box.Min.Y; y < box.Max.Y; y++ {
		for x := box.Min.X; x < box.Max.X; x++ {
			d := math.Hypot(float64(x)+0.5-cx, float64(y)+0.5-cy)
			if cov := clamp01(radius - d + 0.5); cov > 0 {
				BlendPixel(dst, x, y, c, alpha*cov)
			}
		}
	}
}

// DrawLine draws a line from p0 to p1 with a square brush of the given thickness.
func DrawLine(dst *image.RGBA, p0, p1 image.Point, thickness int, c color.RGBA, alpha float64) {
	if thickness < 1 {
		thickness = 1
	}
	lo := -(thickness - 1) / 2
	hi := lo + thickness

	dx := abs(p1.X - p0.X)
	dy := -abs(p1.Y - p0.Y)
	sx, sy := 1, 1
	if p0.X > p1.X {
		sx = -1
	}
	if p0.Y > p1.Y {
		sy = -1
	}
	err := dx + dy
	x, y := p0.X, p0.Y
	for {
		FillRect(dst, image.Rect(x+lo, y+lo, x+hi, y+hi), c, alpha)
		if x == p1.X && y == p1.Y {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x += sx
		}
		if e2 <= dx {
			err += dx
			y += sy
		}
	}
}

// BlendImage composites src over dst with its top-left corner at at, using
// the alpha channel of src as the transparency mask.
func BlendImage(dst *image.RGBA, src *image.RGBA, at image.Point) {
	r := image.Rectangle{Min: at, Max: at.Add(src.Rect.Size())}
	draw.Draw(dst, r, src, src.Rect.Min, draw.Over)
}

func mix(dst, src uint8, a float64) uint8 {
	return uint8(float64(dst)*(1-a) + float64(src)*a + 0.5)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
