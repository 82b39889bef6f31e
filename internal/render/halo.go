package render

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/example/xrayview/internal/annotation"
)

const (
	haloRadius = 2
	haloGain   = 4
	haloAlpha  = 220
)

// drawLabel draws text with its baseline starting at (x, y) on top of a soft
// outline in the contrasting colour of fg, so it reads on bright enamel and
// dark soft tissue alike.
func drawLabel(dst draw.Image, face font.Face, x, y int, text string, fg color.RGBA) {
	if text == "" {
		return
	}
	d := &font.Drawer{Face: face}
	adv := d.MeasureString(text).Ceil()
	m := face.Metrics()
	ascent, descent := m.Ascent.Ceil(), m.Descent.Ceil()
	pad := haloRadius * 2

	mask := image.NewAlpha(image.Rect(0, 0, adv+2*pad, ascent+descent+2*pad))
	d.Dst = mask
	d.Src = image.Opaque
	d.Dot = fixed.P(pad, pad+ascent)
	d.DrawString(text)

	halo := blurAlpha(mask, haloRadius)
	for i, v := range halo.Pix {
		g := int(v) * haloGain
		if g > 255 {
			g = 255
		}
		halo.Pix[i] = uint8(g)
	}

	outline := annotation.ContrastColor(fg)
	outline.A = haloAlpha
	origin := image.Pt(x-pad, y-ascent-pad)
	draw.DrawMask(dst, halo.Bounds().Add(origin), image.NewUniform(outline), image.Point{}, halo, image.Point{}, draw.Over)

	d.Dst = dst
	d.Src = image.NewUniform(fg)
	d.Dot = fixed.P(x, y)
	d.DrawString(text)
}

// blurAlpha is a separable box blur over an alpha mask.
func blurAlpha(src *image.Alpha, radius int) *image.Alpha {
	if radius <= 0 {
		out := image.NewAlpha(src.Bounds())
		copy(out.Pix, src.Pix)
		return out
	}
	bounds := src.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	tmp := image.NewAlpha(bounds)
	dst := image.NewAlpha(bounds)

	prefix := make([]int, max(w, h)+1)
	for y := 0; y < h; y++ {
		row := y * src.Stride
		for x := 0; x < w; x++ {
			prefix[x+1] = prefix[x] + int(src.Pix[row+x])
		}
		for x := 0; x < w; x++ {
			x0, x1 := max(x-radius, 0), min(x+radius, w-1)
			tmp.Pix[y*tmp.Stride+x] = uint8((prefix[x1+1] - prefix[x0]) / (x1 - x0 + 1))
		}
	}
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			prefix[y+1] = prefix[y] + int(tmp.Pix[y*tmp.Stride+x])
		}
		for y := 0; y < h; y++ {
			y0, y1 := max(y-radius, 0), min(y+radius, h-1)
			dst.Pix[y*dst.Stride+x] = uint8((prefix[y1+1] - prefix[y0]) / (y1 - y0 + 1))
		}
	}
	return dst
}
