package facet

import (
	"github.com/chewxy/math32"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// Color is a non alpha-premultiplied RGB color with channels in [0,1].
type Color struct {
	R, G, B float32
}

// Gray is the neutral color assigned by strategies that are not recognized.
var Gray = Color{R: 0.8, G: 0.8, B: 0.8}

// HSL converts hue (in turns), saturation and lightness to RGB.
// Hue wraps around so 1.25 and 0.25 give the same color. Saturation and
// lightness are clamped to [0,1].
func HSL(h, s, l float32) Color {
	h -= math32.Floor(h)
	s = clamp01(s)
	l = clamp01(l)
	c := colorful.Hsl(float64(h)*360, float64(s), float64(l))
	return Color{R: float32(c.R), G: float32(c.G), B: float32(c.B)}
}

// Hue returns the color's HSL hue in turns, in [0,1).
// Achromatic colors have hue 0.
func (c Color) Hue() float32 {
	h, _, _ := colorful.Color{R: float64(c.R), G: float64(c.G), B: float64(c.B)}.Hsl()
	return float32(h / 360)
}

// RGBA implements the color.Color interface.
func (c Color) RGBA() (r, g, b, a uint32) {
	r = uint32(clamp01(c.R)*0xffff + 0.5)
	g = uint32(clamp01(c.G)*0xffff + 0.5)
	b = uint32(clamp01(c.B)*0xffff + 0.5)
	return r, g, b, 0xffff
}

func clamp01(v float32) float32 {
	return math32.Max(0, math32.Min(1, v))
}
