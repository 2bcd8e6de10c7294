package raster

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var face = basicfont.Face7x13

// TextMask renders s with the built-in 7x13 face scaled by scale and returns
// the glyph coverage as an alpha mask anchored at (0, 0).
func TextMask(s string, scale float64) *image.Alpha {
	w0 := font.MeasureString(face, s).Ceil()
	h0 := face.Metrics().Height.Ceil()
	base := image.NewAlpha(image.Rect(0, 0, w0, h0))
	d := font.Drawer{
		Dst:  base,
		Src:  image.Opaque,
		Face: face,
		Dot:  fixed.P(0, face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(s)

	if scale == 1 {
		return base
	}
	w := max(1, int(math.Round(float64(w0)*scale)))
	h := max(1, int(math.Round(float64(h0)*scale)))
	scaled := image.NewAlpha(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), base, base.Bounds(), draw.Src, nil)
	return scaled
}

// DrawMask paints c through mask with the mask's origin placed at at.
func DrawMask(dst *image.RGBA, mask *image.Alpha, at image.Point, c color.RGBA) {
	r := mask.Bounds().Sub(mask.Bounds().Min).Add(at)
	draw.DrawMask(dst, r, image.NewUniform(c), image.Point{}, mask, mask.Bounds().Min, draw.Over)
}

// DrawText draws mask in c, optionally with the four-way black drop shadow.
func DrawText(dst *image.RGBA, mask *image.Alpha, at image.Point, c color.RGBA, shadow bool, shadowOffset int) {
	if shadow {
		black := color.RGBA{A: 255}
		for _, o := range []image.Point{{1, 1}, {-1, 1}, {1, -1}, {-1, -1}} {
			DrawMask(dst, mask, at.Add(o.Mul(shadowOffset)), black)
		}
	}
	DrawMask(dst, mask, at, c)
}
