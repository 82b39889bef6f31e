package render

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/srwiley/rasterx"
	"golang.org/x/image/math/fixed"
	"gonum.org/v1/gonum/spatial/r2"
)

// clipMargin keeps round caps of shapes just outside the canvas intact.
const clipMargin = 32

// previewDashes is the dash pattern of shapes that are still being drawn.
var previewDashes = []float64{6, 4}

// pen rasterizes anti-aliased strokes and fills onto one rectangle of a
// destination image. Path coordinates are relative to that rectangle.
type pen struct {
	dasher   *rasterx.Dasher
	filler   *rasterx.Filler
	min, max r2.Vec
}

func newPen(dst draw.Image, area image.Rectangle) *pen {
	w, h := area.Dx(), area.Dy()
	scanner := rasterx.NewScannerGV(w, h, dst, area)
	return &pen{
		dasher: rasterx.NewDasher(w, h, scanner),
		filler: rasterx.NewFiller(w, h, scanner),
		min:    r2.Vec{X: -clipMargin, Y: -clipMargin},
		max:    r2.Vec{X: float64(w + clipMargin), Y: float64(h + clipMargin)},
	}
}

func fx(v r2.Vec) fixed.Point26_6 { return rasterx.ToFixedP(v.X, v.Y) }

// stroke draws the polyline pts. Segments are clipped to the pen area first
// so that far off-screen points cannot overflow the fixed point rasterizer.
func (p *pen) stroke(pts []r2.Vec, width float64, c color.Color, dashes []float64) {
	if len(pts) < 2 {
		return
	}
	p.dasher.SetStroke(fixed.Int26_6(width*64), 0, rasterx.RoundCap, rasterx.RoundCap, rasterx.RoundGap, rasterx.ArcClip, dashes, 0)
	p.dasher.SetColor(c)
	open := false
	var last r2.Vec
	for i := 1; i < len(pts); i++ {
		a, b, ok := clipSegment(pts[i-1], pts[i], p.min, p.max)
		if !ok {
			continue
		}
		if !open || a != last {
			if open {
				p.dasher.Stop(false)
			}
			p.dasher.Start(fx(a))
			open = true
		}
		p.dasher.Line(fx(b))
		last = b
	}
	if !open {
		return
	}
	p.dasher.Stop(false)
	p.dasher.Draw()
	p.dasher.Clear()
}

// fill paints the closed polygon pts.
func (p *pen) fill(pts []r2.Vec, c color.Color) {
	if len(pts) < 3 {
		return
	}
	for _, v := range pts {
		if !p.inside(v) {
			return
		}
	}
	p.filler.SetColor(c)
	p.filler.Start(fx(pts[0]))
	for _, v := range pts[1:] {
		p.filler.Line(fx(v))
	}
	p.filler.Stop(true)
	p.filler.Draw()
	p.filler.Clear()
}

// dot paints a filled circle.
func (p *pen) dot(center r2.Vec, radius float64, c color.Color) {
	if !p.inside(center) || radius <= 0 {
		return
	}
	p.filler.SetColor(c)
	rasterx.AddCircle(center.X, center.Y, radius, p.filler)
	p.filler.Draw()
	p.filler.Clear()
}

func (p *pen) inside(v r2.Vec) bool {
	return v.X >= p.min.X && v.X <= p.max.X && v.Y >= p.min.Y && v.Y <= p.max.Y
}

// clipSegment clips a-b to the box [min, max] with the Liang-Barsky method.
func clipSegment(a, b, min, max r2.Vec) (r2.Vec, r2.Vec, bool) {
	d := r2.Sub(b, a)
	p := [4]float64{-d.X, d.X, -d.Y, d.Y}
	q := [4]float64{a.X - min.X, max.X - a.X, a.Y - min.Y, max.Y - a.Y}
	t0, t1 := 0.0, 1.0
	for i := range p {
		if p[i] == 0 {
			if q[i] < 0 {
				return a, b, false
			}
			continue
		}
		r := q[i] / p[i]
		if p[i] < 0 {
			if r > t1 {
				return a, b, false
			}
			if r > t0 {
				t0 = r
			}
		} else {
			if r < t0 {
				return a, b, false
			}
			if r < t1 {
				t1 = r
			}
		}
	}
	return r2.Add(a, r2.Scale(t0, d)), r2.Add(a, r2.Scale(t1, d)), true
}
