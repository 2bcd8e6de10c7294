package renderer

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/yh284914425/video-progress/internal/config"
)

func TestFraction(t *testing.T) {
	tests := []struct {
		index, total int
		want         float64
	}{
		{0, 10, 0},
		{9, 10, 1},
		{3, 7, 0.5},
		{12, 10, 1},
		{-1, 10, 0},
		{0, 1, 1},
		{0, 0, 1},
	}
	for _, tt := range tests {
		if got := Fraction(tt.index, tt.total); got != tt.want {
			t.Errorf("Fraction(%d, %d) = %v, want %v", tt.index, tt.total, got, tt.want)
		}
	}
}

func TestPercent(t *testing.T) {
	tests := []struct {
		fraction float64
		want     int
	}{
		{0, 0}, {0.999, 99}, {1, 100}, {1.2, 100}, {-0.5, 0}, {0.29, 29}, {0.57, 57},
	}
	for _, tt := range tests {
		if got := Percent(tt.fraction); got != tt.want {
			t.Errorf("Percent(%v) = %d, want %d", tt.fraction, got, tt.want)
		}
	}
}

func plainConfig() config.RenderConfig {
	cfg := config.DefaultRender()
	cfg.BarHeight = 10
	cfg.Margin = 25
	cfg.BarColor = config.Color{0, 255, 255}
	cfg.GradientEnabled = false
	cfg.GlowEnabled = false
	cfg.ShineEnabled = false
	cfg.BorderThickness = 0
	cfg.TextEnabled = false
	return cfg
}

func countFill(img *image.RGBA, y int, c color.RGBA) int {
	n := 0
	for x := img.Rect.Min.X; x < img.Rect.Max.X; x++ {
		if img.RGBAAt(x, y) == c {
			n++
		}
	}
	return n
}

func TestFillWidthMatchesFraction(t *testing.T) {
	cfg := plainConfig()
	frame := image.Rect(0, 0, 250, 100)
	bar := NewBar(&cfg, frame)
	fillColor := cfg.BarColor.RGBA()
	row := bar.Track().Min.Y + 5

	if bar.Track() != image.Rect(25, 65, 225, 75) {
		t.Fatalf("track = %v", bar.Track())
	}

	for _, f := range []float64{0, 0.1, 0.333, 0.5, 0.77, 1} {
		img := image.NewRGBA(frame)
		bar.Render(img, f, 0)
		want := FillWidth(f, 200)
		if got := countFill(img, row, fillColor); got != want {
			t.Errorf("fraction %.3f: fill %d px, want %d", f, got, want)
		}
	}
}

func TestOutOfRangeFractionIsClamped(t *testing.T) {
	cfg := config.DefaultRender()
	frame := image.Rect(0, 0, 320, 180)
	bar := NewBar(&cfg, frame)

	a := image.NewRGBA(frame)
	b := image.NewRGBA(frame)
	bar.Render(a, 1.2, 4)
	bar.Render(b, 1.0, 4)
	if !bytes.Equal(a.Pix, b.Pix) {
		t.Errorf("fraction 1.2 rendered differently from 1.0")
	}

	bar.Render(a, -0.3, 4)
	bar.Render(b, 0, 4)
	if !bytes.Equal(a.Pix, b.Pix) {
		t.Errorf("fraction -0.3 rendered differently from 0")
	}
}

func TestTopPosition(t *testing.T) {
	cfg := plainConfig()
	cfg.Position = config.PositionTop
	bar := NewBar(&cfg, image.Rect(0, 0, 200, 100))

	if got := bar.Track(); got != image.Rect(25, 25, 175, 35) {
		t.Errorf("top track = %v", got)
	}
}

func TestBorderOutsideTrack(t *testing.T) {
	cfg := plainConfig()
	cfg.BorderThickness = 3
	cfg.BorderColor = config.Color{255, 0, 0}
	frame := image.Rect(0, 0, 200, 100)
	bar := NewBar(&cfg, frame)
	img := image.NewRGBA(frame)

	bar.Render(img, 0.5, 0)

	tr := bar.Track()
	red := color.RGBA{R: 255, A: 255}
	if got := img.RGBAAt(tr.Min.X-1, tr.Min.Y+2); got != red {
		t.Errorf("left border = %v, want red", got)
	}
	if got := img.RGBAAt(tr.Min.X, tr.Min.Y+2); got == red {
		t.Errorf("border drawn inside the track")
	}
}

func TestGradientRunsIntoBarColor(t *testing.T) {
	cfg := plainConfig()
	cfg.GradientEnabled = true
	frame := image.Rect(0, 0, 250, 100)
	bar := NewBar(&cfg, frame)
	img := image.NewRGBA(frame)

	bar.Render(img, 1, 0)

	row := bar.Track().Min.Y + 5
	start := img.RGBAAt(bar.Track().Min.X, row)
	end := img.RGBAAt(bar.Track().Max.X-1, row)
	if start.G >= end.G {
		t.Errorf("gradient should brighten towards the fill edge: start %v, end %v", start, end)
	}
}

func TestShineBlinks(t *testing.T) {
	cfg := plainConfig()
	cfg.ShineEnabled = true
	frame := image.Rect(0, 0, 250, 100)
	bar := NewBar(&cfg, frame)
	x := bar.FillRect(0.5).Max.X - shineOffset
	y := bar.Track().Min.Y + 5
	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}

	on := image.NewRGBA(frame)
	bar.Render(on, 0.5, 3)
	if got := on.RGBAAt(x, y); got != white {
		t.Errorf("tick 3: shine pixel = %v, want white", got)
	}

	off := image.NewRGBA(frame)
	bar.Render(off, 0.5, 13)
	if got := off.RGBAAt(x, y); got == white {
		t.Errorf("tick 13: shine should be off")
	}
}

func TestTextAnchor(t *testing.T) {
	frame := image.Rect(0, 0, 400, 200)
	size := image.Pt(30, 20)

	tests := []struct {
		name     string
		position string
		offsetX  int
		fillEdge int
		wantX    int
	}{
		{"left", config.TextLeft, 15, 0, 40},
		{"center", config.TextCenter, 0, 0, 185},
		{"right", config.TextRight, 15, 0, 330},
		{"follow middle", config.TextFollow, 0, 200, 185},
		{"follow start clamps to track", config.TextFollow, 0, 25, 25},
		{"follow end clamps to track", config.TextFollow, 0, 375, 345},
		{"follow pushed off frame clamps", config.TextFollow, 100, 375, 370},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := plainConfig()
			cfg.TextPosition = tt.position
			cfg.TextOffsetX = tt.offsetX
			bar := NewBar(&cfg, frame)

			at := bar.TextAnchor(size, tt.fillEdge)
			if at.X != tt.wantX {
				t.Errorf("x = %d, want %d", at.X, tt.wantX)
			}
			if at.Y != bar.Track().Min.Y+(10-20)/2 {
				t.Errorf("y = %d, want vertically centered on the bar", at.Y)
			}
		})
	}
}

func TestTextIsDrawn(t *testing.T) {
	cfg := plainConfig()
	cfg.TextEnabled = true
	cfg.TextColor = config.Color{255, 255, 0}
	cfg.TextPosition = config.TextCenter
	cfg.TextOffsetX = 0
	cfg.TextShadow = false
	cfg.TextSize = 1
	frame := image.Rect(0, 0, 300, 100)
	bar := NewBar(&cfg, frame)
	img := image.NewRGBA(frame)

	bar.Render(img, 0.42, 0)

	found := false
	for i := 0; i < len(img.Pix); i += 4 {
		if img.Pix[i] > 200 && img.Pix[i+1] > 200 && img.Pix[i+2] < 50 {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("no text pixels found")
	}
	if len(bar.masks) != 1 {
		t.Errorf("mask cache holds %d entries, want 1", len(bar.masks))
	}
}

func TestRenderFillModes(t *testing.T) {
	frame := image.Rect(0, 0, 250, 100)
	cyan := color.RGBA{G: 255, B: 255, A: 255}

	tests := []struct {
		name   string
		mutate func(*config.RenderConfig)
		check  func(t *testing.T, img *image.RGBA, fill image.Rectangle)
	}{
		{
			name: "vertical gradient",
			mutate: func(c *config.RenderConfig) {
				c.GradientEnabled = true
				c.GradientDirection = config.GradientVertical
			},
			check: func(t *testing.T, img *image.RGBA, fill image.Rectangle) {
				midX, midY := (fill.Min.X+fill.Max.X)/2, (fill.Min.Y+fill.Max.Y)/2
				top := img.RGBAAt(midX, fill.Min.Y)
				bottom := img.RGBAAt(midX, fill.Max.Y-1)
				t.Logf("top %v, bottom %v", top, bottom)
				if top != (color.RGBA{G: 153, B: 153, A: 255}) {
					t.Errorf("top row = %v, want the gradient start color", top)
				}
				if top.G >= bottom.G {
					t.Errorf("gradient should brighten downwards: top %v, bottom %v", top, bottom)
				}
				left, right := img.RGBAAt(fill.Min.X, midY), img.RGBAAt(fill.Max.X-1, midY)
				if left != right {
					t.Errorf("row %d varies across the fill: left %v, right %v", midY, left, right)
				}
			},
		},
		{
			name: "flat fill with glow",
			mutate: func(c *config.RenderConfig) {
				c.GlowEnabled = true
				c.GlowRadius = 8
				c.GlowOpacity = 0.35
			},
			check: func(t *testing.T, img *image.RGBA, fill image.Rectangle) {
				midX := (fill.Min.X + fill.Max.X) / 2
				if got := img.RGBAAt(midX, fill.Min.Y+5); got != cyan {
					t.Errorf("fill pixel = %v, want the exact bar color", got)
				}
				halo := img.RGBAAt(midX, fill.Min.Y-3)
				t.Logf("halo 3px above the track: %v", halo)
				if halo.A == 0 || halo.G == 0 || halo == cyan {
					t.Errorf("no translucent halo above the fill: %v", halo)
				}
				if got := img.RGBAAt(midX, fill.Min.Y-10); got.A != 0 {
					t.Errorf("halo reaches past its radius: %v", got)
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := plainConfig()
			tt.mutate(&cfg)
			bar := NewBar(&cfg, frame)
			img := image.NewRGBA(frame)

			bar.Render(img, 0.5, 0)

			fill := bar.FillRect(0.5)
			if fill != image.Rect(25, 65, 125, 75) {
				t.Fatalf("fill = %v", fill)
			}
			tt.check(t, img, fill)
		})
	}
}
