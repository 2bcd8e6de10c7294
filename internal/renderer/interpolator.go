package renderer

import "math"

// Fraction converts a 0-based frame index into playback progress:
// index/(total-1), clamped to [0, 1]. A stream of one frame (or an unknown
// length) is always complete.
func Fraction(index, total int) float64 {
	if total <= 1 {
		return 1
	}
	return Clamp01(float64(index) / float64(total-1))
}

// Clamp01 limits f to [0, 1]. NaN maps to 0.
func Clamp01(f float64) float64 {
	if !(f > 0) {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// FillWidth returns round(clamp(fraction) * trackWidth).
func FillWidth(fraction float64, trackWidth int) int {
	return int(math.Round(lerp(0, float64(trackWidth), Clamp01(fraction))))
}

// Percent is the integer shown in the progress text.
func Percent(fraction float64) int {
	return int(math.Floor(Clamp01(fraction)*100 + 1e-9))
}

// lerp performs linear interpolation between a and b
func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
