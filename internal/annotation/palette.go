package annotation

import (
	"image/color"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// PaletteSize is the number of annotation colours offered by the viewer.
const PaletteSize = 8

// Palette returns n evenly spaced, saturated hues starting at yellow, which
// reads well on both bright and dark radiograph regions.
func Palette(n int) []color.RGBA {
	if n <= 0 {
		return nil
	}
	out := make([]color.RGBA, 0, n)
	for i := 0; i < n; i++ {
		h := 55 + float64(i)*360/float64(n)
		for h >= 360 {
			h -= 360
		}
		c := colorful.Hsv(h, 0.85, 1).Clamped()
		r, g, b := c.RGB255()
		out = append(out, color.RGBA{R: r, G: g, B: b, A: 255})
	}
	return out
}

// DefaultColor is the first palette entry.
func DefaultColor() color.RGBA { return Palette(PaletteSize)[0] }

// ContrastColor picks black or white, whichever separates better from c.
func ContrastColor(c color.Color) color.RGBA {
	cc, ok := colorful.MakeColor(c)
	if !ok {
		return color.RGBA{A: 255}
	}
	l, _, _ := cc.Lab()
	if l > 0.6 {
		return color.RGBA{A: 255}
	}
	return color.RGBA{R: 255, G: 255, B: 255, A: 255}
}
